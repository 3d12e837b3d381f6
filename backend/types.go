package backend

// responsesRequest is the body of POST /responses.
type responsesRequest struct {
	Model        string                  `json:"model"`
	Input        []responsesInputMessage `json:"input"`
	Instructions string                  `json:"instructions,omitempty"`
}

type responsesInputMessage struct {
	Role    string                 `json:"role"`
	Content []responsesContentPart `json:"content"`
}

type responsesContentPart struct {
	Type     string  `json:"type"`
	Text     *string `json:"text,omitempty"` // set for input_text, even when empty
	ImageURL string  `json:"image_url,omitempty"` // data URL
}

type responsesResponse struct {
	ID         string            `json:"id"`
	Model      string            `json:"model"`
	Status     string            `json:"status"`
	Output     []responsesOutput `json:"output"`
	OutputText string            `json:"output_text,omitempty"`
	Error      *responsesError   `json:"error,omitempty"`
}

type responsesOutput struct {
	Type    string                    `json:"type"`
	Role    string                    `json:"role,omitempty"`
	Content []responsesMessageContent `json:"content,omitempty"`
}

type responsesMessageContent struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type responsesError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code"`
	} `json:"error"`
}
