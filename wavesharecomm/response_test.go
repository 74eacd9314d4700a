package wavesharecomm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResponseLines(t *testing.T) {
	r := Response("AT+CGPADDR=1\r\r\n+CGPADDR: 1,10.0.0.7\r\n\r\nOK\r\n")
	assert.Equal(t, []string{"AT+CGPADDR=1", "+CGPADDR: 1,10.0.0.7", "OK"}, r.Lines())
	assert.Empty(t, Response("\r\n\r\n").Lines())
}

func TestResponseStatus(t *testing.T) {
	cases := []struct {
		reply string
		want  Status
	}{
		{"\r\nOK\r\n", StatusOK},
		{"\r\nERROR\r\n", StatusError},
		{"\r\n+CME ERROR: SIM not inserted\r\n", StatusCMEError},
		{"\r\n+CMS ERROR: 500\r\n", StatusCMSError},
		{"\r\nOK\r\n\r\n+HTTPACTION: 0,200,12\r\n", StatusOK},
		{"\r\n+HTTPACTION: 0,200,12\r\n", StatusNone},
		{"", StatusNone},
		{"\r\nOK\x00\r\nERROR\r\n", StatusOK},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Response(c.reply).Status(), "%q", c.reply)
	}
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "OK", StatusOK.String())
	assert.Equal(t, "+CME ERROR", StatusCMEError.String())
	assert.Equal(t, "none", StatusNone.String())
}

func TestCommandFormatting(t *testing.T) {
	assert.Equal(t, "AT", Command(""))
	assert.Equal(t, "AT+CGATT?", Read(CmdAttach))
	assert.Equal(t, "AT+HTTPINIT", Execute(CmdHTTPInit))
	assert.Equal(t, `AT+CGDCONT=1,"IP","everywhere"`,
		Set(CmdDefineContext, "1", Quote("IP"), Quote("everywhere")))
	assert.Equal(t, `AT+HTTPPARA="READMODE",1`, Set(CmdHTTPParam, Quote("READMODE"), "1"))
}
