// Package request dispatches newline-delimited JSON requests to the backend
// operations: playback, directory listing, persistence, thumbnails and viewer
// navigation. One request line in, one response line out.
package request

import (
	"log/slog"

	"github.com/spf13/afero"

	"vsee.click/internal/library"
	"vsee.click/internal/store"
	"vsee.click/internal/thumb"
	"vsee.click/internal/viewer"
)

// Operation names accepted in the "op" field.
const (
	OpPlayAudio          = "play_audio"
	OpStopAudio          = "stop_audio"
	OpPauseAudio         = "pause_audio"
	OpListDirectory      = "list_directory"
	OpGetFolderRoots     = "get_folder_roots"
	OpGetParentPath      = "get_parent_path"
	OpReadFileAsDataURL  = "read_file_as_data_url"
	OpReadFileAsAudioURL = "read_file_as_audio_url"
	OpGetPersisted       = "get_persisted"
	OpSetPersisted       = "set_persisted"
	OpGetAllPersisted    = "get_all_persisted"
	OpGetVideoThumbnail  = "get_video_thumbnail_data_url"
	OpOpenViewer         = "open_viewer"
	OpViewerNext         = "viewer_next"
	OpViewerPrev         = "viewer_prev"
	OpGetViewerContext   = "get_viewer_context"
	OpDebugLog           = "debug_log"
)

// Request is the wire envelope. Fields beyond op are operation-specific.
type Request struct {
	Op         string   `json:"op"`
	Path       string   `json:"path,omitempty"`
	Key        string   `json:"key,omitempty"`
	Value      string   `json:"value,omitempty"`
	Paths      []string `json:"paths,omitempty"`
	StartIndex int      `json:"start_index,omitempty"`
	Message    string   `json:"message,omitempty"`
	Level      string   `json:"level,omitempty"`
}

// Response is the wire reply. Only the fields relevant to the operation are
// populated; Error is set exactly when OK is false.
type Response struct {
	OK      bool              `json:"ok"`
	Error   string            `json:"error,omitempty"`
	Entries []library.Entry   `json:"entries,omitempty"`
	Value   string            `json:"value,omitempty"`
	Found   bool              `json:"found,omitempty"`
	State   map[string]string `json:"state,omitempty"`
	DBPath  string            `json:"db_path,omitempty"`
	DataURL string            `json:"data_url,omitempty"`
	Parent  string            `json:"parent,omitempty"`
	Item    *viewer.Item      `json:"item,omitempty"`
	Viewer  *viewer.Context   `json:"viewer,omitempty"`
}

// AudioEngine is the slice of the playback engine the dispatcher needs.
type AudioEngine interface {
	Play(path string) error
	Stop() error
	PauseOrResume() error
}

// Handler owns the long-lived collaborators and answers requests. Construct
// with NewHandler; zero value is not usable.
type Handler struct {
	engine AudioEngine
	store  *store.Store
	viewer *viewer.Viewer
	fsys   afero.Fs

	// thumbFunc is swapped in tests so no ffmpeg process runs.
	thumbFunc func(path string) (string, error)
}

// NewHandler wires a dispatcher. engine may be nil when audio failed to start;
// playback requests then report the engine as unavailable instead of failing
// the whole process.
func NewHandler(engine AudioEngine, st *store.Store, vw *viewer.Viewer, fsys afero.Fs) *Handler {
	return &Handler{
		engine:    engine,
		store:     st,
		viewer:    vw,
		fsys:      fsys,
		thumbFunc: thumb.DataURL,
	}
}

// Handle executes one request and returns its response. It never panics on
// bad input; unknown ops and missing fields come back as error responses.
func (h *Handler) Handle(req Request) Response {
	slog.Debug("handling request", "op", req.Op)

	switch req.Op {
	case OpPlayAudio:
		return h.playAudio(req.Path)
	case OpStopAudio:
		return h.audioResult(func(e AudioEngine) error { return e.Stop() })
	case OpPauseAudio:
		return h.audioResult(func(e AudioEngine) error { return e.PauseOrResume() })

	case OpListDirectory:
		result := library.List(h.fsys, req.Path)
		return Response{OK: result.OK, Error: result.Error, Entries: result.Entries}
	case OpGetFolderRoots:
		result := library.Roots(h.fsys)
		return Response{OK: result.OK, Error: result.Error, Entries: result.Entries}
	case OpGetParentPath:
		parent, ok := library.ParentPath(req.Path)
		return Response{OK: true, Parent: parent, Found: ok}
	case OpReadFileAsDataURL:
		return h.dataURL(library.ReadFileAsDataURL, req.Path)
	case OpReadFileAsAudioURL:
		return h.dataURL(library.ReadFileAsAudioURL, req.Path)

	case OpGetPersisted:
		return h.getPersisted(req.Key)
	case OpSetPersisted:
		return h.setPersisted(req.Key, req.Value)
	case OpGetAllPersisted:
		return h.getAllPersisted()

	case OpGetVideoThumbnail:
		url, err := h.thumbFunc(req.Path)
		if err != nil {
			return Response{Error: err.Error()}
		}
		return Response{OK: true, DataURL: url}

	case OpOpenViewer:
		h.viewer.Open(req.Paths, req.StartIndex)
		return Response{OK: true}
	case OpViewerNext:
		return viewerStep(h.viewer.Next)
	case OpViewerPrev:
		return viewerStep(h.viewer.Prev)
	case OpGetViewerContext:
		ctx := h.viewer.Context()
		return Response{OK: true, Viewer: &ctx}

	case OpDebugLog:
		h.debugLog(req.Level, req.Message)
		return Response{OK: true}

	default:
		slog.Warn("unknown request op", "op", req.Op)
		return Response{Error: "Unknown operation: " + req.Op}
	}
}

func (h *Handler) playAudio(path string) Response {
	if path == "" {
		return Response{Error: "Missing path."}
	}
	return h.audioResult(func(e AudioEngine) error { return e.Play(path) })
}

func (h *Handler) audioResult(call func(AudioEngine) error) Response {
	if h.engine == nil {
		return Response{Error: "audio engine unavailable"}
	}
	if err := call(h.engine); err != nil {
		return Response{Error: err.Error()}
	}
	return Response{OK: true}
}

func (h *Handler) dataURL(read func(afero.Fs, string) (string, error), path string) Response {
	url, err := read(h.fsys, path)
	if err != nil {
		return Response{Error: err.Error()}
	}
	return Response{OK: true, DataURL: url}
}

func (h *Handler) getPersisted(key string) Response {
	if key == "" {
		return Response{Error: "Missing key."}
	}
	value, found, err := h.store.Get(key)
	if err != nil {
		return Response{Error: err.Error()}
	}
	return Response{OK: true, Value: value, Found: found}
}

func (h *Handler) setPersisted(key, value string) Response {
	if key == "" {
		return Response{Error: "Missing key."}
	}
	if err := h.store.Set(key, value); err != nil {
		return Response{Error: err.Error()}
	}
	return Response{OK: true}
}

func (h *Handler) getAllPersisted() Response {
	state, err := h.store.All()
	if err != nil {
		return Response{Error: err.Error()}
	}
	return Response{OK: true, State: state, DBPath: h.store.Path()}
}

func viewerStep(step func() (viewer.Item, bool)) Response {
	item, ok := step()
	if !ok {
		return Response{OK: true}
	}
	return Response{OK: true, Item: &item}
}

// debugLog forwards a frontend log line into the backend log at the matching
// level.
func (h *Handler) debugLog(level, message string) {
	switch level {
	case "error":
		slog.Error(message, "source", "frontend")
	case "warn", "warning":
		slog.Warn(message, "source", "frontend")
	case "debug":
		slog.Debug(message, "source", "frontend")
	default:
		slog.Info(message, "source", "frontend")
	}
}
