package wavesharecomm

import "strings"

// Names of the extended commands the fetch sequence uses.
const (
	CmdAttach         = "CGATT"
	CmdDefineContext  = "CGDCONT"
	CmdContextAuth    = "CGAUTH"
	CmdActivate       = "CGACT"
	CmdContextAddress = "CGPADDR"
	CmdHTTPInit       = "HTTPINIT"
	CmdHTTPTerm       = "HTTPTERM"
	CmdHTTPSSL        = "HTTPSSL"
	CmdHTTPParam      = "HTTPPARA"
	CmdHTTPAction     = "HTTPACTION"
	CmdHTTPRead       = "HTTPREAD"
)

// Command prefixes `body` with "AT".
func Command(body string) string {
	return "AT" + body
}

// Read formats `name` as a read command (AT+NAME?).
func Read(name string) string {
	return Command("+" + name + "?")
}

// Execute formats `name` as an execute command (AT+NAME).
func Execute(name string) string {
	return Command("+" + name)
}

// Set formats `name` as a set command (AT+NAME=a,b,...).
func Set(name string, args ...string) string {
	return Command("+" + name + "=" + strings.Join(args, ","))
}

// Quote wraps a string argument in double quotes.
func Quote(s string) string {
	return `"` + s + `"`
}
