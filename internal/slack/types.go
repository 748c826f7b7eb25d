package slack

// Item types returned by stars.list.
const (
	TypeMessage = "message"
	TypeFile    = "file"
	TypeChannel = "channel"
)

// SavedItem is one starred item. Exactly one of Message or File is populated
// depending on Type; Channel holds the channel ID for message and channel
// variants.
type SavedItem struct {
	Type       string   `json:"type"`
	Channel    string   `json:"channel,omitempty"`
	Message    *Message `json:"message,omitempty"`
	File       *File    `json:"file,omitempty"`
	DateCreate int64    `json:"date_create,omitempty"`
}

// Message is the message payload of a starred message.
type Message struct {
	Text      string `json:"text"`
	User      string `json:"user"`
	Timestamp string `json:"ts"`
	Permalink string `json:"permalink,omitempty"`
	Team      string `json:"team,omitempty"`
}

// File is the file payload of a starred file.
type File struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Title     string `json:"title,omitempty"`
	User      string `json:"user"`
	Permalink string `json:"permalink,omitempty"`
}

// Describe returns a short identifying string for error reports.
func (it SavedItem) Describe() string {
	switch it.Type {
	case TypeMessage:
		if it.Message != nil {
			return "message " + it.Message.Timestamp + " in " + it.Channel
		}
		return "message in " + it.Channel
	case TypeFile:
		if it.File != nil {
			return "file " + it.File.ID
		}
		return "file"
	case TypeChannel:
		return "channel " + it.Channel
	default:
		return "item of type " + it.Type
	}
}

// apiEnvelope is the common Slack Web API response shape.
type apiEnvelope struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// starsListResponse is the stars.list payload.
type starsListResponse struct {
	apiEnvelope
	Items            []SavedItem `json:"items"`
	ResponseMetadata struct {
		NextCursor string `json:"next_cursor"`
	} `json:"response_metadata"`
}

// userInfoResponse is the users.info payload.
type userInfoResponse struct {
	apiEnvelope
	User struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		RealName string `json:"real_name"`
		Profile  struct {
			DisplayName string `json:"display_name"`
		} `json:"profile"`
	} `json:"user"`
}

// conversationInfoResponse is the conversations.info payload.
type conversationInfoResponse struct {
	apiEnvelope
	Channel struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"channel"`
}

// authTestResponse is the auth.test payload.
type authTestResponse struct {
	apiEnvelope
	URL    string `json:"url"`
	Team   string `json:"team"`
	User   string `json:"user"`
	UserID string `json:"user_id"`
}
