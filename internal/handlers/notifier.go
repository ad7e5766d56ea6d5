package handlers

import (
	"net/http"
	"strconv"
)

// requestNotifier answers blog notices for one HTTP request. Alerts are
// returned to the client in the response body; a confirmation prompt is
// answered by the confirm query parameter.
type requestNotifier struct {
	confirmed bool
	notices   []string
	prompt    string
}

func newNotifier(r *http.Request) *requestNotifier {
	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	return &requestNotifier{confirmed: confirmed}
}

func (n *requestNotifier) Alert(msg string) {
	n.notices = append(n.notices, msg)
}

func (n *requestNotifier) Confirm(prompt string) bool {
	n.prompt = prompt
	return n.confirmed
}
