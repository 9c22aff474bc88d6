package domain

// Event is one outbound realtime message: a named frame with an arbitrary
// JSON-encodable payload.
type Event struct {
	Name string `json:"name"`
	Data any    `json:"data,omitempty"`
}

func NewEvent(name string, data any) Event {
	return Event{Name: name, Data: data}
}

// Request is one inbound realtime message. Data keeps whatever shape the
// client sent; the router substitutes a declared default when a handler
// expects an object and got something else.
type Request struct {
	Name string `json:"name"`
	Data any    `json:"data"`
}

// LoginResult is the payload of the "login" outcome event.
type LoginResult struct {
	Success bool   `json:"success"`
	Name    string `json:"name,omitempty"`
	Guest   bool   `json:"guest,omitempty"`
	Error   string `json:"error,omitempty"`
}

func NewLoginSuccess(name string, guest bool) Event {
	return NewEvent("login", LoginResult{Success: true, Name: name, Guest: guest})
}

func NewLoginFailure(reason string) Event {
	return NewEvent("login", LoginResult{Success: false, Error: reason})
}

func NewRankEvent(rank int) Event {
	return NewEvent("rank", rank)
}

func NewKickEvent(reason string) Event {
	return NewEvent("kick", map[string]any{"reason": reason})
}

func NewErrorMsgEvent(msg string) Event {
	return NewEvent("errorMsg", map[string]any{"msg": msg})
}

func NewSetAFKEvent(name string, afk bool) Event {
	return NewEvent("setAFK", map[string]any{"name": name, "afk": afk})
}

func NewSetUserRankEvent(name string, rank int) Event {
	return NewEvent("setUserRank", map[string]any{"name": name, "rank": rank})
}
