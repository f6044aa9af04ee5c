package alert

type Receiver interface {
	Id() string
	Message(message Message) error
}

type Message interface {
	Title() string
	Content() string
}

type BaseApi struct {
	Type    string `json:"type"`    // email or dingTalk
	Address string `json:"address"` // mail address or webhook url
	Token   string `json:"token"`   // dingTalk secret, unused for mail
}

// NewReceiver builds the concrete receiver for a BaseApi, nil when the type
// is unknown.
func NewReceiver(r BaseApi) Receiver {
	switch r.Type {
	case "email":
		return Mail{BaseApi: r}
	case "dingTalk":
		return DingTalk{BaseApi: r}
	default:
		return nil
	}
}
