package simhttp

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	"github.com/Potsdam-Sensors/sim-https-get/wavesharecomm"
	"github.com/warthog618/modem/info"
)

const (
	httpActionPrefix = "+" + wavesharecomm.CmdHTTPAction
	httpActionMarker = httpActionPrefix + ":"
	httpReadMarker   = "+" + wavesharecomm.CmdHTTPRead + ":"
	pdpAddressPrefix = "+" + wavesharecomm.CmdContextAddress
	attachPrefix     = "+" + wavesharecomm.CmdAttach
)

// ParseHTTPLength returns the body length reported by a "+HTTPACTION:"
// result in `resp`, e.g. 4096 for "+HTTPACTION: 0,200,4096".
//
// The marker may appear anywhere in `resp`. Whatever follows the second
// comma after it is read as a leading decimal integer. A missing marker, a
// missing comma or a field without digits all give 0, so "not found" and a
// zero length cannot be told apart.
func ParseHTTPLength(resp string) int {
	i := strings.Index(resp, httpActionMarker)
	if i < 0 {
		return 0
	}
	rest := resp[i:]
	for n := 0; n < 2; n++ {
		c := strings.IndexByte(rest, ',')
		if c < 0 {
			return 0
		}
		rest = rest[c+1:]
	}
	return leadingInt(rest)
}

// leadingInt converts the longest integer prefix of s, after optional
// whitespace and sign, and stops at the first non-digit. No digits gives 0;
// values beyond the int range saturate.
func leadingInt(s string) int {
	i := 0
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	neg := false
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		neg = s[i] == '-'
		i++
	}
	n := 0
	for ; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		d := int(s[i] - '0')
		if n > (math.MaxInt-d)/10 {
			if neg {
				return math.MinInt
			}
			return math.MaxInt
		}
		n = n*10 + d
	}
	if neg {
		return -n
	}
	return n
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

// HTTPAction is the result of an AT+HTTPACTION request.
type HTTPAction struct {
	Method int
	Status int
	Length int
}

// ParseHTTPAction finds a well formed "+HTTPACTION: <method>,<status>,<length>"
// line in `resp`.
func ParseHTTPAction(resp string) (HTTPAction, bool) {
	for _, l := range wavesharecomm.Response(resp).Lines() {
		if !info.HasPrefix(l, httpActionPrefix) {
			continue
		}
		fields := strings.Split(info.TrimPrefix(l, httpActionPrefix), ",")
		if len(fields) != 3 {
			continue
		}
		var vals [3]int
		ok := true
		for i, f := range fields {
			v, err := strconv.Atoi(strings.TrimSpace(f))
			if err != nil {
				ok = false
				break
			}
			vals[i] = v
		}
		if ok {
			return HTTPAction{Method: vals[0], Status: vals[1], Length: vals[2]}, true
		}
	}
	return HTTPAction{}, false
}

// ParsePDPAddress returns the address in a "+CGPADDR: <cid>,<addr>" reply,
// or "" if there is none.
func ParsePDPAddress(resp string) string {
	for _, l := range wavesharecomm.Response(resp).Lines() {
		if !info.HasPrefix(l, pdpAddressPrefix) {
			continue
		}
		fields := strings.SplitN(info.TrimPrefix(l, pdpAddressPrefix), ",", 2)
		if len(fields) == 2 {
			return strings.Trim(strings.TrimSpace(fields[1]), `"`)
		}
	}
	return ""
}

// ParseAttached reports the "+CGATT: <state>" value in `resp`. The second
// result is false when the reply holds no such line.
func ParseAttached(resp string) (attached bool, found bool) {
	for _, l := range wavesharecomm.Response(resp).Lines() {
		if info.HasPrefix(l, attachPrefix) {
			return strings.TrimSpace(info.TrimPrefix(l, attachPrefix)) == "1", true
		}
	}
	return false, false
}

// ExtractHTTPReadPayload collects the body bytes framed by "+HTTPREAD: <len>"
// headers in an AT+HTTPREAD reply. A header with length 0 closes the body.
// Data cut short by the reply buffer is returned as far as it goes.
func ExtractHTTPReadPayload(resp []byte) []byte {
	var payload []byte
	marker := []byte(httpReadMarker)
	rest := resp
	for {
		i := bytes.Index(rest, marker)
		if i < 0 {
			return payload
		}
		rest = rest[i+len(marker):]

		eol := bytes.Index(rest, []byte("\r\n"))
		if eol < 0 {
			return payload
		}
		header := string(rest[:eol])
		rest = rest[eol+2:]

		// "+HTTPREAD: 512" or "+HTTPREAD: DATA,512"
		if c := strings.LastIndexByte(header, ','); c >= 0 {
			header = header[c+1:]
		}
		n, err := strconv.Atoi(strings.TrimSpace(header))
		if err != nil || n <= 0 {
			if err == nil {
				return payload
			}
			continue
		}
		if n > len(rest) {
			n = len(rest)
		}
		payload = append(payload, rest[:n]...)
		rest = rest[n:]
	}
}
