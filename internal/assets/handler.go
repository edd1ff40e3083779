package assets

import (
	"bytes"
	"errors"
	"io/fs"
	"net/http"
	"strings"
)

// bootstrapStyle keeps the UI feeling like a native window.
const bootstrapStyle = `* {
  cursor: default !important;
  -webkit-user-select: none;
  -moz-user-select: none;
  -ms-user-select: none;
  user-select: none;
}`

// bootstrapScript exposes window.ipc.postMessage. Inside Wails it emits the
// "ipc" event; in a plain browser it talks to the dev server websocket and
// evaluates whatever the host sends back.
const bootstrapScript = `(function () {
  window.__HMR_ENABLED__ = true;
  if (window.ipc) { return; }
  var socket = null, pending = [];
  function connect() {
    var proto = location.protocol === 'https:' ? 'wss://' : 'ws://';
    socket = new WebSocket(proto + location.host + '/ipc');
    socket.onopen = function () { pending.splice(0).forEach(function (m) { socket.send(m); }); };
    socket.onmessage = function (ev) { (0, eval)(ev.data); };
    socket.onclose = function () { socket = null; };
  }
  window.ipc = {
    postMessage: function (msg) {
      if (typeof msg !== 'string') { msg = JSON.stringify(msg); }
      if (window.runtime && window.runtime.EventsEmit) {
        window.runtime.EventsEmit('ipc', msg);
        return;
      }
      if (!socket) { connect(); }
      if (socket.readyState === 1) { socket.send(msg); } else { pending.push(msg); }
    }
  };
})();`

// Handler serves the two virtual sources: the main document at "/" and
// supporting files under "/assets/".
func (m *Manager) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", m.serveDocument)
	mux.Handle("/assets/", withCORS(http.HandlerFunc(m.serveStatic)))

	if m.Dev() {
		return noCache(mux)
	}
	return mux
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
		w.Header().Set("Cross-Origin-Embedder-Policy", "require-corp")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.ServeHTTP(w, r)
	})
}

func (m *Manager) serveDocument(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/"+indexFile {
		http.NotFound(w, r)
		return
	}

	data, err := m.HTML()
	if err != nil {
		log.Errorf("failed to load HTML: %v", err)
		http.Error(w, "failed to load document", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", staticTypes[".html"])
	w.Write(injectBootstrap(data))
}

func (m *Manager) serveStatic(w http.ResponseWriter, r *http.Request) {
	rel := strings.TrimPrefix(r.URL.Path, "/")

	ct, ok := contentTypeForPath(rel)
	if !ok {
		http.NotFound(w, r)
		return
	}

	data, err := m.load(rel, ct)
	if err != nil {
		log.Errorf("failed to load asset %s: %v", r.URL.Path, err)
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, ErrOutsideRoot) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "failed to load asset", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", ct)
	w.Write(data)
}

// injectBootstrap places the bootstrap style and script just before </head>,
// or at the very start when the document has no head.
func injectBootstrap(doc []byte) []byte {
	tag := []byte("<style>" + bootstrapStyle + "</style><script>" + bootstrapScript + "</script>")
	lower := bytes.ToLower(doc)
	if i := bytes.Index(lower, []byte("</head>")); i >= 0 {
		out := make([]byte, 0, len(doc)+len(tag))
		out = append(out, doc[:i]...)
		out = append(out, tag...)
		return append(out, doc[i:]...)
	}
	return append(tag, doc...)
}
