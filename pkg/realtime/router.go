package realtime

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Source discriminates inbound and outbound frames. The set is closed:
// the router decodes the tag once and dispatches through an exhaustive
// switch, so a typo in a client frame can only reach the default arm.
type Source string

const (
	SourceSearch         Source = "search"
	SourceFriendList     Source = "friend.list"
	SourceMessageList    Source = "message.list"
	SourceMessageSend    Source = "message.send"
	SourceMessageType    Source = "message.type"
	SourceRequestConnect Source = "request.connect"
	SourceRequestAccept  Source = "request.accept"
	SourceRequestList    Source = "request.list"
	SourceThumbnail      Source = "thumbnail"
)

// Envelope is the wire object pushed to clients: the operation tag plus an
// operation-specific payload.
type Envelope struct {
	Source Source `json:"source"`
	Data   any    `json:"data"`
}

// ErrorFrame is sent back to the originating socket only, never broadcast.
type ErrorFrame struct {
	Error string `json:"error"`
}

// Inbound payload shapes. Each frame carries the source tag plus the
// fields of its operation.
type searchFrame struct {
	Query string `json:"query"`
}

type messageListFrame struct {
	ConnectionID uuid.UUID `json:"connectionId"`
	Page         int       `json:"page"`
}

type messageSendFrame struct {
	ConnectionID uuid.UUID `json:"connectionId"`
	Message      string    `json:"message"`
}

type idFrame struct {
	ID uuid.UUID `json:"id"`
}

type thumbnailFrame struct {
	Base64   string `json:"base64"`
	Filename string `json:"filename"`
}

// Router turns one inbound text frame into one handler call. It owns no
// state beyond the handler set.
type Router struct {
	h *Handlers
}

func NewRouter(h *Handlers) *Router {
	return &Router{h: h}
}

// Dispatch parses the frame and invokes the matching operation for the
// acting user. A non-nil return is an error frame the session must send
// back to the same socket; malformed input never closes the connection.
func (r *Router) Dispatch(userID uuid.UUID, frame []byte) *ErrorFrame {
	var env struct {
		Source Source `json:"source"`
	}
	if err := json.Unmarshal(frame, &env); err != nil {
		return &ErrorFrame{Error: "Invalid JSON data"}
	}

	switch env.Source {
	case SourceSearch:
		var f searchFrame
		if err := json.Unmarshal(frame, &f); err != nil {
			return &ErrorFrame{Error: "Invalid JSON data"}
		}
		r.h.Search(userID, f.Query)

	case SourceFriendList:
		r.h.FriendList(userID)

	case SourceMessageList:
		var f messageListFrame
		if err := json.Unmarshal(frame, &f); err != nil {
			return &ErrorFrame{Error: "Invalid JSON data"}
		}
		r.h.MessageList(userID, f.ConnectionID, f.Page)

	case SourceMessageSend:
		var f messageSendFrame
		if err := json.Unmarshal(frame, &f); err != nil {
			return &ErrorFrame{Error: "Invalid JSON data"}
		}
		r.h.MessageSend(userID, f.ConnectionID, f.Message)

	case SourceMessageType:
		var f idFrame
		if err := json.Unmarshal(frame, &f); err != nil {
			return &ErrorFrame{Error: "Invalid JSON data"}
		}
		r.h.MessageType(userID, f.ID)

	case SourceRequestConnect:
		var f idFrame
		if err := json.Unmarshal(frame, &f); err != nil {
			return &ErrorFrame{Error: "Invalid JSON data"}
		}
		r.h.RequestConnect(userID, f.ID)

	case SourceRequestAccept:
		var f idFrame
		if err := json.Unmarshal(frame, &f); err != nil {
			return &ErrorFrame{Error: "Invalid JSON data"}
		}
		r.h.RequestAccept(userID, f.ID)

	case SourceRequestList:
		r.h.RequestList(userID)

	case SourceThumbnail:
		var f thumbnailFrame
		if err := json.Unmarshal(frame, &f); err != nil {
			return &ErrorFrame{Error: "Invalid JSON data"}
		}
		r.h.Thumbnail(userID, f.Base64, f.Filename)

	default:
		return &ErrorFrame{Error: "Unknown source"}
	}
	return nil
}
