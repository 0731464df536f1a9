package http

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
)

// Data stream framing understood by AI-SDK chat clients: one part per line,
// "<type>:<json>\n".
const (
	dataStreamHeader  = "X-Vercel-AI-Data-Stream"
	dataStreamVersion = "v1"

	partStartStep     = "f"
	partText          = "0"
	partFinishStep    = "e"
	partFinishMessage = "d"
)

type startStepPart struct {
	MessageID string `json:"messageId"`
}

type finishStepPart struct {
	FinishReason string `json:"finishReason"`
	IsContinued  bool   `json:"isContinued"`
}

type finishMessagePart struct {
	FinishReason string `json:"finishReason"`
}

var newMessageID = func() string {
	return "msg-" + uuid.NewString()
}

// dataStreamWriter encodes stream parts onto w.
type dataStreamWriter struct {
	w io.Writer
}

func (d dataStreamWriter) part(kind string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s part: %w", kind, err)
	}
	_, err = fmt.Fprintf(d.w, "%s:%s\n", kind, b)
	return err
}

func (d dataStreamWriter) Start() error {
	return d.part(partStartStep, startStepPart{MessageID: newMessageID()})
}

func (d dataStreamWriter) Text(chunk string) error {
	return d.part(partText, chunk)
}

func (d dataStreamWriter) Finish() error {
	if err := d.part(partFinishStep, finishStepPart{FinishReason: "stop"}); err != nil {
		return err
	}
	return d.part(partFinishMessage, finishMessagePart{FinishReason: "stop"})
}
