package sdk

import "strings"

// Separator joins the arguments of a request body.
const Separator = ";#;"

// Request is a request frame sent to the bridge.
type Request struct {
	ID     string `json:"id"`
	Action string `json:"action"`
	Body   string `json:"body"`
}

// Response is a response frame sent by the bridge.
// It echoes the ID of the Request it answers.
type Response struct {
	ID string `json:"id"`
	Result
}

// EncodeBody joins args into a request body.
func EncodeBody(args []string) string {
	return strings.Join(args, Separator)
}

// DecodeBody splits body into exactly n fields.
// The last field keeps any further separators.
// It returns false if body has fewer than n fields.
func DecodeBody(body string, n int) ([]string, bool) {
	if n <= 0 {
		return nil, false
	}
	fields := strings.SplitN(body, Separator, n)
	if len(fields) != n {
		return nil, false
	}
	return fields, true
}
