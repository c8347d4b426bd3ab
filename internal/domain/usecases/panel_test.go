package usecases

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/0xcro3dile/boost-go/internal/domain/entities"
)

type fakeDisplays struct {
	displays  []entities.Display
	cursor    entities.Point
	cursorErr error
}

func (f *fakeDisplays) Displays(ctx context.Context) ([]entities.Display, error) {
	return f.displays, nil
}

func (f *fakeDisplays) CursorPosition(ctx context.Context) (entities.Point, error) {
	return f.cursor, f.cursorErr
}

type fakeSelection struct {
	text string
	err  error
}

func (f *fakeSelection) SelectedText(ctx context.Context) (string, error) {
	return f.text, f.err
}

type fakeScreenshots struct {
	captured []entities.Display
}

func (f *fakeScreenshots) Capture(ctx context.Context, d entities.Display) (string, error) {
	f.captured = append(f.captured, d)
	return "/tmp/shot.png", nil
}

func newPanel(t *testing.T, provider *fakeProvider, displays *fakeDisplays, selection *fakeSelection) (*PanelUseCase, *fakeScreenshots) {
	t.Helper()
	windows, _ := safariSetup()
	capture := NewCaptureUseCase(windows, fakeRegistry{"com.apple.Safari": provider}, CaptureOptions{}, zaptest.NewLogger(t))
	conv := NewConversation(&staticStreamer{chunks: []string{"ok"}}, ConversationOptions{}, zaptest.NewLogger(t))
	shots := &fakeScreenshots{}
	return NewPanelUseCase(capture, conv, displays, selection, shots, zaptest.NewLogger(t)), shots
}

func TestPanel_ShowWithContextBuildsPromptFromContent(t *testing.T) {
	_, provider := safariSetup()
	panel, _ := newPanel(t, provider, &fakeDisplays{cursor: entities.Point{X: 10, Y: 10}}, &fakeSelection{text: "scalable"})

	snap := panel.Show(context.Background(), true)
	assert.Equal(t, "The Go Programming Language", snap.Title)
	assert.Equal(t, "scalable", snap.Highlighted)

	panel.capture.Wait()

	prompt, ok := panel.Conversation().SystemPrompt()
	require.True(t, ok)
	assert.Contains(t, prompt.Content, "Build simple, secure, scalable systems")
	assert.Contains(t, prompt.Content, highlightedFocus)
	assert.Equal(t, "Build simple, secure, scalable systems", panel.Context().Content)
}

func TestPanel_LateContentKeepsHistory(t *testing.T) {
	_, provider := safariSetup()
	provider.release = make(chan struct{})
	panel, _ := newPanel(t, provider, &fakeDisplays{cursor: entities.Point{X: 10, Y: 10}}, &fakeSelection{})

	panel.Show(context.Background(), true)
	conv := panel.Conversation()
	_, err := conv.Submit(context.Background(), "what is this page?")
	require.NoError(t, err)
	waitIdle(t, conv)

	close(provider.release)
	panel.capture.Wait()

	assert.Len(t, conv.History(), 2)
	prompt, _ := conv.SystemPrompt()
	assert.Contains(t, prompt.Content, "Build simple, secure, scalable systems")
}

func TestPanel_ShowWithoutContext(t *testing.T) {
	_, provider := safariSetup()
	panel, _ := newPanel(t, provider, &fakeDisplays{}, &fakeSelection{text: "lorem ipsum"})

	snap := panel.Show(context.Background(), false)
	assert.Equal(t, "lorem ipsum", snap.Highlighted)
	assert.Empty(t, snap.Title)
	assert.Nil(t, snap.App)

	prompt, _ := panel.Conversation().SystemPrompt()
	assert.Contains(t, prompt.Content, "lorem ipsum\n"+highlightedClause)
	assert.Empty(t, provider.hints)
}

func TestPanel_DegradesWhenCollaboratorsFail(t *testing.T) {
	_, provider := safariSetup()
	panel, _ := newPanel(t, provider,
		&fakeDisplays{cursorErr: errors.New("no event tap")},
		&fakeSelection{err: errors.New("accessibility denied")})

	snap := panel.Show(context.Background(), true)
	assert.True(t, snap.Empty())

	prompt, _ := panel.Conversation().SystemPrompt()
	assert.Equal(t, BuildSystemPrompt("", "", ""), prompt.Content)
}

func TestPanel_ScreenshotUsesDisplayUnderCursor(t *testing.T) {
	_, provider := safariSetup()
	displays := &fakeDisplays{
		cursor: entities.Point{X: 2000, Y: 100},
		displays: []entities.Display{
			{ID: 1, Index: 0, Frame: entities.Rect{Width: 1440, Height: 900}},
			{ID: 2, Index: 1, Frame: entities.Rect{X: 1440, Width: 1920, Height: 1080}},
		},
	}
	panel, shots := newPanel(t, provider, displays, &fakeSelection{})

	path, err := panel.Screenshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/tmp/shot.png", path)
	require.Len(t, shots.captured, 1)
	assert.Equal(t, uint32(2), shots.captured[0].ID)
}
