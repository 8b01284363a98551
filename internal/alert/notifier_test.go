package alert

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hoekwacht/hoekwacht/internal/model"
)

type recordingEmailSender struct {
	to      string
	subject string
	body    string
	calls   int
	err     error
}

func (s *recordingEmailSender) SendEmail(_ context.Context, to, subject, body string) error {
	s.calls++
	s.to = to
	s.subject = subject
	s.body = body
	return s.err
}

type recordingMessageSender struct {
	to    string
	body  string
	calls int
	err   error
}

func (s *recordingMessageSender) SendMessage(_ context.Context, to, body string) error {
	s.calls++
	s.to = to
	s.body = body
	return s.err
}

func intp(v int) *int { return &v }

func testResult() *model.MatchResult {
	return &model.MatchResult{
		ID:           7,
		Title:        "Hoekbank links beige",
		URL:          "https://ads.example/1",
		MatchPercent: 87.5,
		Price:        intp(450),
		DistanceKM:   intp(12),
		PhotoURLs:    []string{"p1", "p2"},
	}
}

func TestNotifyPrefersEmail(t *testing.T) {
	email := &recordingEmailSender{}
	whatsapp := &recordingMessageSender{}
	d := NewDispatcher(email, whatsapp)

	client := &model.Client{ID: 1, Name: "Anne", Email: "anne@example.com", WhatsApp: "+31600000000"}
	err := d.Notify(context.Background(), client, testResult())

	require.NoError(t, err)
	assert.Equal(t, 1, email.calls)
	assert.Equal(t, 0, whatsapp.calls)
	assert.Equal(t, "anne@example.com", email.to)
	assert.Equal(t, "New match found", email.subject)
}

func TestNotifyFallsBackToWhatsApp(t *testing.T) {
	email := &recordingEmailSender{}
	whatsapp := &recordingMessageSender{}
	d := NewDispatcher(email, whatsapp)

	client := &model.Client{ID: 1, Name: "Anne", WhatsApp: "+31600000000"}
	err := d.Notify(context.Background(), client, testResult())

	require.NoError(t, err)
	assert.Equal(t, 0, email.calls)
	assert.Equal(t, 1, whatsapp.calls)
	assert.Equal(t, "+31600000000", whatsapp.to)
}

func TestNotifySkipsUnreachableClient(t *testing.T) {
	email := &recordingEmailSender{}
	whatsapp := &recordingMessageSender{}
	d := NewDispatcher(email, whatsapp)

	client := &model.Client{ID: 1, Name: "Anne"}
	err := d.Notify(context.Background(), client, testResult())

	require.NoError(t, err)
	assert.Equal(t, 0, email.calls)
	assert.Equal(t, 0, whatsapp.calls)
}

func TestNotifyPropagatesSenderError(t *testing.T) {
	email := &recordingEmailSender{err: errors.New("smtp down")}
	d := NewDispatcher(email, &recordingMessageSender{})

	client := &model.Client{ID: 1, Name: "Anne", Email: "anne@example.com"}
	err := d.Notify(context.Background(), client, testResult())

	assert.Error(t, err)
}

func TestFormatMessage(t *testing.T) {
	body := FormatMessage(testResult())

	assert.Equal(t,
		"Match: 87.5%\nPrice: €450\nDistance: 12 km\nLink: https://ads.example/1\nPhotos: p1 | p2",
		body)
}

func TestFormatMessageOmitsAbsentFields(t *testing.T) {
	result := &model.MatchResult{
		URL:          "https://ads.example/2",
		MatchPercent: 62.5,
	}

	body := FormatMessage(result)

	assert.Equal(t, "Match: 62.5%\nLink: https://ads.example/2", body)
}

func TestFormatMessageCapsPhotos(t *testing.T) {
	result := testResult()
	result.PhotoURLs = []string{"p1", "p2", "p3", "p4", "p5"}

	body := FormatMessage(result)

	assert.Contains(t, body, "Photos: p1 | p2 | p3")
	assert.NotContains(t, body, "p4")
}
