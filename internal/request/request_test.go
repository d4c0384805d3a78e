package request

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"vsee.click/internal/store"
	"vsee.click/internal/viewer"
)

// fakeEngine records playback calls and returns scripted errors.
type fakeEngine struct {
	played  []string
	stops   int
	pauses  int
	playErr error
}

func (e *fakeEngine) Play(path string) error {
	e.played = append(e.played, path)
	return e.playErr
}

func (e *fakeEngine) Stop() error {
	e.stops++
	return nil
}

func (e *fakeEngine) PauseOrResume() error {
	e.pauses++
	return nil
}

func newTestHandler(t *testing.T) (*Handler, *fakeEngine) {
	t.Helper()

	st, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("store.Open failed: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	fsys := afero.NewMemMapFs()
	if err := fsys.MkdirAll("/media", 0o755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if err := afero.WriteFile(fsys, "/media/a.jpg", []byte("img"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	engine := &fakeEngine{}
	h := NewHandler(engine, st, viewer.New(), fsys)
	return h, engine
}

func TestPlayAudioRoutesToEngine(t *testing.T) {
	h, engine := newTestHandler(t)

	resp := h.Handle(Request{Op: OpPlayAudio, Path: "/media/track.mp3"})
	if !resp.OK {
		t.Fatalf("play_audio failed: %s", resp.Error)
	}
	if len(engine.played) != 1 || engine.played[0] != "/media/track.mp3" {
		t.Errorf("engine received %v", engine.played)
	}
}

func TestPlayAudioPropagatesEngineError(t *testing.T) {
	h, engine := newTestHandler(t)
	engine.playErr = errors.New("MP3: bad frame")

	resp := h.Handle(Request{Op: OpPlayAudio, Path: "/x.mp3"})
	if resp.OK || resp.Error != "MP3: bad frame" {
		t.Errorf("response = %+v, want the engine error verbatim", resp)
	}
}

func TestPlayAudioRequiresPath(t *testing.T) {
	h, engine := newTestHandler(t)

	resp := h.Handle(Request{Op: OpPlayAudio})
	if resp.OK {
		t.Error("play_audio without path should fail")
	}
	if len(engine.played) != 0 {
		t.Error("engine must not be called without a path")
	}
}

func TestStopAndPause(t *testing.T) {
	h, engine := newTestHandler(t)

	if resp := h.Handle(Request{Op: OpStopAudio}); !resp.OK {
		t.Errorf("stop_audio failed: %s", resp.Error)
	}
	if resp := h.Handle(Request{Op: OpPauseAudio}); !resp.OK {
		t.Errorf("pause_audio failed: %s", resp.Error)
	}
	if engine.stops != 1 || engine.pauses != 1 {
		t.Errorf("engine calls: stops=%d pauses=%d", engine.stops, engine.pauses)
	}
}

func TestAudioWithoutEngine(t *testing.T) {
	st, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("store.Open failed: %v", err)
	}
	defer st.Close()
	h := NewHandler(nil, st, viewer.New(), afero.NewMemMapFs())

	for _, op := range []string{OpPlayAudio, OpStopAudio, OpPauseAudio} {
		resp := h.Handle(Request{Op: op, Path: "/x.mp3"})
		if resp.OK || !strings.Contains(resp.Error, "unavailable") {
			t.Errorf("%s without engine = %+v, want unavailable error", op, resp)
		}
	}
}

func TestListDirectory(t *testing.T) {
	h, _ := newTestHandler(t)

	resp := h.Handle(Request{Op: OpListDirectory, Path: "/media"})
	if !resp.OK {
		t.Fatalf("list_directory failed: %s", resp.Error)
	}
	if len(resp.Entries) != 1 || resp.Entries[0].Name != "a.jpg" {
		t.Errorf("entries = %+v", resp.Entries)
	}
}

func TestGetParentPath(t *testing.T) {
	h, _ := newTestHandler(t)

	resp := h.Handle(Request{Op: OpGetParentPath, Path: "/media/sub"})
	if !resp.OK || !resp.Found || resp.Parent != "/media" {
		t.Errorf("parent of /media/sub = %+v", resp)
	}

	resp = h.Handle(Request{Op: OpGetParentPath, Path: "/"})
	if !resp.OK || resp.Found {
		t.Errorf("parent of / = %+v, want found=false", resp)
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	h, _ := newTestHandler(t)

	resp := h.Handle(Request{Op: OpSetPersisted, Key: store.LastFolderKey, Value: "/media"})
	if !resp.OK {
		t.Fatalf("set_persisted failed: %s", resp.Error)
	}

	resp = h.Handle(Request{Op: OpGetPersisted, Key: store.LastFolderKey})
	if !resp.OK || !resp.Found || resp.Value != "/media" {
		t.Errorf("get_persisted = %+v", resp)
	}

	resp = h.Handle(Request{Op: OpGetPersisted, Key: "never_set"})
	if !resp.OK || resp.Found {
		t.Errorf("get_persisted for missing key = %+v, want found=false", resp)
	}

	resp = h.Handle(Request{Op: OpGetAllPersisted})
	if !resp.OK || resp.State[store.LastFolderKey] != "/media" || resp.DBPath == "" {
		t.Errorf("get_all_persisted = %+v", resp)
	}
}

func TestPersistenceRequiresKey(t *testing.T) {
	h, _ := newTestHandler(t)

	for _, op := range []string{OpGetPersisted, OpSetPersisted} {
		if resp := h.Handle(Request{Op: op}); resp.OK {
			t.Errorf("%s without key should fail", op)
		}
	}
}

func TestThumbnailUsesInjectedExtractor(t *testing.T) {
	h, _ := newTestHandler(t)
	h.thumbFunc = func(path string) (string, error) {
		if path != "/media/clip.mp4" {
			t.Errorf("thumb called with %q", path)
		}
		return "data:image/png;base64,AAAA", nil
	}

	resp := h.Handle(Request{Op: OpGetVideoThumbnail, Path: "/media/clip.mp4"})
	if !resp.OK || !strings.HasPrefix(resp.DataURL, "data:image/png;base64,") {
		t.Errorf("thumbnail response = %+v", resp)
	}
}

func TestThumbnailFailure(t *testing.T) {
	h, _ := newTestHandler(t)
	h.thumbFunc = func(string) (string, error) {
		return "", errors.New("ffmpeg failed: boom")
	}

	resp := h.Handle(Request{Op: OpGetVideoThumbnail, Path: "/x.mp4"})
	if resp.OK || resp.Error != "ffmpeg failed: boom" {
		t.Errorf("response = %+v", resp)
	}
}

func TestViewerFlow(t *testing.T) {
	h, _ := newTestHandler(t)

	resp := h.Handle(Request{
		Op:         OpOpenViewer,
		Paths:      []string{"/a.jpg", "/b.jpg", "/c.jpg"},
		StartIndex: 1,
	})
	if !resp.OK {
		t.Fatalf("open_viewer failed: %s", resp.Error)
	}

	resp = h.Handle(Request{Op: OpViewerNext})
	if !resp.OK || resp.Item == nil || resp.Item.Path != "/c.jpg" {
		t.Errorf("viewer_next = %+v", resp)
	}

	resp = h.Handle(Request{Op: OpViewerPrev})
	if !resp.OK || resp.Item == nil || resp.Item.Path != "/b.jpg" {
		t.Errorf("viewer_prev = %+v", resp)
	}

	resp = h.Handle(Request{Op: OpGetViewerContext})
	if !resp.OK || resp.Viewer == nil || resp.Viewer.Index != 1 || len(resp.Viewer.Paths) != 3 {
		t.Errorf("get_viewer_context = %+v", resp)
	}
}

func TestViewerNavigationOnEmptyViewer(t *testing.T) {
	h, _ := newTestHandler(t)

	resp := h.Handle(Request{Op: OpViewerNext})
	if !resp.OK || resp.Item != nil {
		t.Errorf("viewer_next on empty viewer = %+v, want ok with no item", resp)
	}
}

func TestDebugLogAlwaysSucceeds(t *testing.T) {
	h, _ := newTestHandler(t)

	for _, level := range []string{"log", "info", "warn", "error", "debug", "weird"} {
		resp := h.Handle(Request{Op: OpDebugLog, Level: level, Message: "frontend says hi"})
		if !resp.OK {
			t.Errorf("debug_log level %q failed: %s", level, resp.Error)
		}
	}
}

func TestUnknownOp(t *testing.T) {
	h, _ := newTestHandler(t)

	resp := h.Handle(Request{Op: "fly_to_moon"})
	if resp.OK || !strings.Contains(resp.Error, "fly_to_moon") {
		t.Errorf("unknown op response = %+v", resp)
	}
}

func TestServeLineProtocol(t *testing.T) {
	h, engine := newTestHandler(t)

	input := strings.Join([]string{
		`{"op":"set_persisted","key":"last_folder","value":"/media"}`,
		``,
		`this is not json`,
		`{"op":"play_audio","path":"/media/track.mp3"}`,
	}, "\n") + "\n"

	var out bytes.Buffer
	if err := h.Serve(strings.NewReader(input), &out); err != nil {
		t.Fatalf("Serve failed: %v", err)
	}

	var responses []Response
	scanner := bufio.NewScanner(&out)
	for scanner.Scan() {
		var resp Response
		if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
			t.Fatalf("malformed response line %q: %v", scanner.Text(), err)
		}
		responses = append(responses, resp)
	}

	// Blank line skipped: three responses for four input lines.
	if len(responses) != 3 {
		t.Fatalf("got %d responses, want 3", len(responses))
	}
	if !responses[0].OK {
		t.Errorf("set_persisted response = %+v", responses[0])
	}
	if responses[1].OK || !strings.Contains(responses[1].Error, "Invalid request") {
		t.Errorf("malformed line response = %+v", responses[1])
	}
	if !responses[2].OK {
		t.Errorf("play_audio response = %+v", responses[2])
	}
	if len(engine.played) != 1 {
		t.Errorf("engine played %v", engine.played)
	}
}
