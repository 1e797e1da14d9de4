package main

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/chazu/rapidorigin/pkg/command"
	"github.com/chazu/rapidorigin/pkg/config"
	"github.com/chazu/rapidorigin/pkg/engine"
	"github.com/chazu/rapidorigin/pkg/geom"
	"github.com/chazu/rapidorigin/pkg/kernel/sdfx"
	"github.com/chazu/rapidorigin/pkg/mesh"
	"github.com/chazu/rapidorigin/pkg/scene"
)

// colorPalette is a default palette used to assign distinct colors to objects.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// sceneChangedEvent is emitted after a menu action replaces or edits the scene.
const sceneChangedEvent = "scene:changed"

// App is the Wails backend. It exposes methods to the frontend via bindings.
// Binding calls are serialized; the current scene is only touched under mu.
type App struct {
	ctx context.Context

	mu       sync.Mutex
	cfg      config.Config
	engine   *engine.Engine
	registry *command.Registry
	scene    *scene.Scene
}

// ObjectData is the JSON-serializable form of one scene object.
type ObjectData struct {
	Name          string    `json:"name"`
	Vertices      []float32 `json:"vertices"`
	Indices       []uint32  `json:"indices"`
	Origin        geom.Vec3 `json:"origin"`
	LocalMin      geom.Vec3 `json:"localMin"`
	LocalMax      geom.Vec3 `json:"localMax"`
	Selected      bool      `json:"selected"`
	Active        bool      `json:"active"`
	SelectedVerts int       `json:"selectedVerts"`
	Color         string    `json:"color"`
}

// EvalErrorData is a JSON-serializable eval error for the frontend.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// ReportData is a user-facing message from a command.
type ReportData struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// SceneResult is the full scene state returned to the frontend.
type SceneResult struct {
	Objects []ObjectData    `json:"objects"`
	Cursor  geom.Vec3       `json:"cursor"`
	Mode    string          `json:"mode"`
	Reports []ReportData    `json:"reports"`
	Errors  []EvalErrorData `json:"errors"`
}

// CommandResult is returned by command bindings.
type CommandResult struct {
	Status string      `json:"status"`
	Kind   string      `json:"kind,omitempty"`
	Error  string      `json:"error,omitempty"`
	Scene  SceneResult `json:"scene"`
}

// NewApp creates an App with an sdfx kernel and the default command registry.
func NewApp(cfg config.Config) *App {
	reg := command.DefaultRegistry()
	return &App{
		cfg:      cfg,
		registry: reg,
		engine: engine.NewEngine(sdfx.New(cfg.MeshCells), reg,
			engine.WithTimeout(cfg.EvalTimeout),
			engine.WithWeldTolerance(cfg.WeldTolerance),
		),
		scene: scene.New(),
	}
}

// startup is called by Wails on app startup. The context is saved
// so we can call Wails runtime methods later.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
}

// Evaluate runs a scene script. On success the resulting scene replaces the
// current one; on failure the current scene is kept and errors are returned.
func (a *App) Evaluate(source string) SceneResult {
	sc, evalErrs, err := a.engine.Evaluate(source)

	a.mu.Lock()
	defer a.mu.Unlock()

	if err != nil {
		// Fatal error (panic, timeout, etc.)
		log.Printf("Evaluate fatal error: %v", err)
		return a.snapshot(EvalErrorData{Message: err.Error()})
	}
	if len(evalErrs) > 0 {
		errs := make([]EvalErrorData, len(evalErrs))
		for i, e := range evalErrs {
			errs[i] = EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message}
		}
		return a.snapshot(errs...)
	}

	a.scene = sc
	return a.snapshot()
}

// SnapOrigin runs Rapid Snap Origin on the current scene.
func (a *App) SnapOrigin() CommandResult {
	return a.RunCommand(command.SnapOriginID)
}

// RunCommand runs any registered command on the current scene.
func (a *App) RunCommand(id string) CommandResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	out, err := a.registry.Run(id, a.scene)
	res := CommandResult{Status: out.Status.String()}
	if err != nil {
		log.Printf("RunCommand %s: %v", id, err)
		res.Error = err.Error()
	}
	if out.Status == command.StatusFinished {
		res.Kind = out.Result.Kind.String()
		if out.Result.Err != nil {
			res.Error = out.Result.Message()
		}
	}
	res.Scene = a.snapshot()
	return res
}

// SelectObject makes name the only selected object and the active one.
func (a *App) SelectObject(name string) SceneResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, err := a.scene.Object(name); err != nil {
		return a.snapshot(EvalErrorData{Message: err.Error()})
	}
	a.scene.DeselectAll()
	if err := a.selectObject(name); err != nil {
		return a.snapshot(EvalErrorData{Message: err.Error()})
	}
	return a.snapshot()
}

// SelectVertices selects vertices of name. An empty index list selects all.
func (a *App) SelectVertices(name string, indices []int) SceneResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	var err error
	if len(indices) == 0 {
		err = a.scene.SelectAllVertices(name, true)
	} else {
		err = a.scene.SelectVertices(name, indices...)
	}
	if err != nil {
		return a.snapshot(EvalErrorData{Message: err.Error()})
	}
	return a.snapshot()
}

// ImportMesh loads an OBJ or glTF file into the current scene. Imported
// objects become selected with every vertex selected.
func (a *App) ImportMesh(path string) SceneResult {
	imports, err := loadMeshFile(path)

	a.mu.Lock()
	defer a.mu.Unlock()

	if err != nil {
		log.Printf("ImportMesh %s: %v", path, err)
		return a.snapshot(EvalErrorData{Message: err.Error()})
	}

	a.scene.DeselectAll()
	for _, imp := range imports {
		name := a.uniqueName(imp.Name)
		imp.Mesh.SelectAll(true)
		if _, err := a.scene.Add(name, imp.Mesh, imp.Transform); err != nil {
			return a.snapshot(EvalErrorData{Message: err.Error()})
		}
		if err := a.selectObject(name); err != nil {
			return a.snapshot(EvalErrorData{Message: err.Error()})
		}
	}
	return a.snapshot()
}

// loadMeshFile dispatches on the file extension.
func loadMeshFile(path string) ([]mesh.Import, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".obj":
		m, err := mesh.LoadOBJ(path)
		if err != nil {
			return nil, err
		}
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		return []mesh.Import{{Name: name, Mesh: m, Transform: geom.Identity()}}, nil
	case ".gltf", ".glb":
		return mesh.LoadGLTF(path)
	}
	return nil, fmt.Errorf("unsupported mesh format %q", ext)
}

// selectObject must be called with mu held. Imports accumulate into the
// selection; the first selected object stays active.
func (a *App) selectObject(name string) error {
	return a.scene.Select(name)
}

// uniqueName appends .001, .002, ... until name is free.
func (a *App) uniqueName(name string) string {
	if _, err := a.scene.Object(name); err != nil {
		return name
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s.%03d", name, i)
		if _, err := a.scene.Object(candidate); err != nil {
			return candidate
		}
	}
}

// snapshot converts the current scene. It must be called with mu held.
func (a *App) snapshot(errs ...EvalErrorData) SceneResult {
	result := SceneResult{
		Objects: []ObjectData{},
		Cursor:  a.scene.Cursor(),
		Mode:    a.scene.Mode().String(),
		Reports: []ReportData{},
		Errors:  append([]EvalErrorData{}, errs...),
	}

	selected := make(map[string]bool)
	for _, o := range a.scene.SelectedObjects() {
		selected[o.Name()] = true
	}
	var active string
	if o := a.scene.ActiveObject(); o != nil {
		active = o.Name()
	}

	for i, o := range a.scene.Objects() {
		verts, idx := o.Mesh().Triangulate(o.Transform())
		lo, hi := o.Mesh().Bounds()
		result.Objects = append(result.Objects, ObjectData{
			Name:          o.Name(),
			Vertices:      verts,
			Indices:       idx,
			Origin:        o.Origin(),
			LocalMin:      lo,
			LocalMax:      hi,
			Selected:      selected[o.Name()],
			Active:        o.Name() == active,
			SelectedVerts: len(o.Mesh().Selected()),
			Color:         colorPalette[i%len(colorPalette)],
		})
	}
	for _, r := range a.scene.Reports() {
		result.Reports = append(result.Reports, ReportData{Level: r.Level.String(), Message: r.Message})
	}
	return result
}

// emit sends an event to the frontend once the Wails runtime is up.
func (a *App) emit(event string, data interface{}) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, event, data)
}

// importDialog asks the user for a mesh file and imports it.
func (a *App) importDialog() {
	if a.ctx == nil {
		return
	}
	path, err := runtime.OpenFileDialog(a.ctx, runtime.OpenDialogOptions{
		Title: "Import Mesh",
		Filters: []runtime.FileFilter{
			{DisplayName: "Meshes (*.obj, *.gltf, *.glb)", Pattern: "*.obj;*.gltf;*.glb"},
		},
	})
	if err != nil {
		log.Printf("import dialog: %v", err)
		return
	}
	if path == "" {
		return
	}
	a.emit(sceneChangedEvent, a.ImportMesh(path))
}
