package origin

import (
	"bytes"
	"errors"
	"log"
	"os"
	"strings"
	"testing"

	"github.com/chazu/rapidorigin/pkg/geom"
)

// ---------------------------------------------------------------------------
// Stub host
// ---------------------------------------------------------------------------

type stubObject struct {
	name      string
	points    []geom.Vec3
	transform geom.Transform
}

func (o *stubObject) Name() string                { return o.name }
func (o *stubObject) SelectedPoints() []geom.Vec3 { return o.points }
func (o *stubObject) Transform() geom.Transform   { return o.transform }

type report struct {
	level Level
	msg   string
}

// stubHost records every interaction. originErr and originPanic inject
// failures into the relocation step.
type stubHost struct {
	objects []Object
	mode    Mode
	cursor  geom.Vec3

	cursorWrites []geom.Vec3
	modeChanges  []Mode
	relocatedTo  []geom.Vec3
	reports      []report

	originErr   error
	originPanic bool
	setModeErr  error
	restoreErr  error // fails SetMode back into edit mode only
}

func (h *stubHost) SelectedObjects() []Object { return h.objects }

func (h *stubHost) ActiveObject() Object {
	if len(h.objects) == 0 {
		return nil
	}
	return h.objects[0]
}

func (h *stubHost) Mode() Mode { return h.mode }

func (h *stubHost) SetMode(m Mode) error {
	if h.setModeErr != nil {
		return h.setModeErr
	}
	if h.restoreErr != nil && m == ModeEdit {
		return h.restoreErr
	}
	h.modeChanges = append(h.modeChanges, m)
	h.mode = m
	return nil
}

func (h *stubHost) Cursor() geom.Vec3 { return h.cursor }

func (h *stubHost) SetCursor(v geom.Vec3) {
	h.cursorWrites = append(h.cursorWrites, v)
	h.cursor = v
}

func (h *stubHost) OriginToCursor(Object) error {
	if h.originPanic {
		panic("host exploded")
	}
	if h.originErr != nil {
		return h.originErr
	}
	h.relocatedTo = append(h.relocatedTo, h.cursor)
	return nil
}

func (h *stubHost) Report(l Level, msg string) {
	h.reports = append(h.reports, report{l, msg})
}

// Compile-time interface checks.
var _ Host = (*stubHost)(nil)
var _ Object = (*stubObject)(nil)

func triangle(tr geom.Transform) *stubObject {
	return &stubObject{
		name:      "tri",
		points:    []geom.Vec3{{X: 0, Y: 0, Z: 0}, {X: 2, Y: 0, Z: 0}, {X: 0, Y: 2, Z: 0}},
		transform: tr,
	}
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestRecenterIdentity(t *testing.T) {
	start := geom.Vec3{X: 5, Y: 5, Z: 5}
	h := &stubHost{objects: []Object{triangle(geom.Identity())}, cursor: start}

	res := Recenter(h)
	if !res.OK() {
		t.Fatalf("Recenter() kind = %v, err = %v", res.Kind, res.Err)
	}
	want := geom.Vec3{X: 2.0 / 3, Y: 2.0 / 3, Z: 0}
	if !res.Centroid.ApproxEqual(want, 1e-9) {
		t.Errorf("centroid = %v, want %v", res.Centroid, want)
	}
	if len(h.relocatedTo) != 1 || !h.relocatedTo[0].ApproxEqual(want, 1e-9) {
		t.Errorf("relocated to %v, want [%v]", h.relocatedTo, want)
	}
	if h.cursor != start {
		t.Errorf("cursor = %v after Recenter, want %v", h.cursor, start)
	}
	if res.Object != "tri" {
		t.Errorf("Object = %q, want %q", res.Object, "tri")
	}
}

func TestRecenterScaledTranslated(t *testing.T) {
	tr := geom.Compose(geom.Vec3{X: 10, Y: 0, Z: 0}, geom.Vec3{}, geom.Vec3{X: 2, Y: 2, Z: 2})
	h := &stubHost{objects: []Object{triangle(tr)}}

	res := Recenter(h)
	if !res.OK() {
		t.Fatalf("Recenter() err = %v", res.Err)
	}
	want := geom.Vec3{X: 10 + 4.0/3, Y: 4.0 / 3, Z: 0}
	if !res.Centroid.ApproxEqual(want, 1e-9) {
		t.Errorf("centroid = %v, want %v", res.Centroid, want)
	}
	if len(h.relocatedTo) != 1 || !h.relocatedTo[0].ApproxEqual(want, 1e-9) {
		t.Errorf("relocation target = %v, want %v", h.relocatedTo, want)
	}
}

func TestRecenterSelectionCount(t *testing.T) {
	tests := []struct {
		name    string
		objects []Object
		msg     string
	}{
		{"none", nil, msgNoObjects},
		{"two", []Object{triangle(geom.Identity()), triangle(geom.Identity())}, msgMultipleObjects},
		{"three", []Object{triangle(geom.Identity()), triangle(geom.Identity()), triangle(geom.Identity())}, msgMultipleObjects},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &stubHost{objects: tt.objects, cursor: geom.Vec3{X: 1, Y: 2, Z: 3}, mode: ModeEdit}
			res := Recenter(h)

			if res.Kind != KindSelectionCount {
				t.Fatalf("kind = %v, want %v", res.Kind, KindSelectionCount)
			}
			if !errors.Is(res.Err, ErrSelectionCount) {
				t.Errorf("err = %v, want ErrSelectionCount", res.Err)
			}
			if len(h.cursorWrites) != 0 {
				t.Errorf("cursor written %d times, want 0", len(h.cursorWrites))
			}
			if len(h.modeChanges) != 0 {
				t.Errorf("mode changed %v, want no changes", h.modeChanges)
			}
			if len(h.relocatedTo) != 0 {
				t.Error("origin relocated despite selection error")
			}
			if len(h.reports) != 1 || h.reports[0].level != LevelWarning || h.reports[0].msg != tt.msg {
				t.Errorf("reports = %v, want one warning %q", h.reports, tt.msg)
			}
		})
	}
}

func TestRecenterEmptySelection(t *testing.T) {
	obj := &stubObject{name: "empty", transform: geom.Identity()}
	h := &stubHost{objects: []Object{obj}, cursor: geom.Vec3{X: 9, Y: 8, Z: 7}}

	res := Recenter(h)
	if res.Kind != KindEmptySelection {
		t.Fatalf("kind = %v, want %v", res.Kind, KindEmptySelection)
	}
	if !errors.Is(res.Err, ErrEmptySelection) {
		t.Errorf("err = %v, want ErrEmptySelection", res.Err)
	}
	if len(h.cursorWrites) != 0 {
		t.Errorf("cursor written %v, want untouched", h.cursorWrites)
	}
	if len(h.relocatedTo) != 0 {
		t.Error("origin relocated despite empty selection")
	}
	if len(h.reports) != 1 || h.reports[0].msg != msgNoVertices {
		t.Errorf("reports = %v", h.reports)
	}
}

func TestRecenterEmptySelectionRestoresMode(t *testing.T) {
	obj := &stubObject{name: "empty"}
	h := &stubHost{objects: []Object{obj}, mode: ModeEdit}

	Recenter(h)
	if h.mode != ModeEdit {
		t.Errorf("mode = %v after abort, want edit", h.mode)
	}
}

func TestRecenterRestoreFailure(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	t.Run("after success", func(t *testing.T) {
		h := &stubHost{
			objects:    []Object{triangle(geom.Identity())},
			mode:       ModeEdit,
			restoreErr: errors.New("session locked"),
		}
		res := Recenter(h)
		if res.Kind != KindUnknownOperation {
			t.Errorf("kind = %v, want %v", res.Kind, KindUnknownOperation)
		}
	})

	t.Run("after failure", func(t *testing.T) {
		buf.Reset()
		h := &stubHost{
			objects:    []Object{&stubObject{name: "empty"}},
			mode:       ModeEdit,
			restoreErr: errors.New("session locked"),
		}
		res := Recenter(h)
		if res.Kind != KindEmptySelection {
			t.Errorf("kind = %v, want the original %v", res.Kind, KindEmptySelection)
		}
		if !strings.Contains(buf.String(), "restore edit mode: session locked") {
			t.Errorf("restore error not logged, log = %q", buf.String())
		}
	})
}

func TestRecenterRelocationError(t *testing.T) {
	start := geom.Vec3{X: -1, Y: 0, Z: 4}
	h := &stubHost{
		objects:   []Object{triangle(geom.Identity())},
		cursor:    start,
		originErr: errors.New("no mesh data"),
	}

	res := Recenter(h)
	if res.Kind != KindUnknownOperation {
		t.Fatalf("kind = %v, want %v", res.Kind, KindUnknownOperation)
	}
	if !errors.Is(res.Err, ErrUnknownOperation) {
		t.Errorf("err = %v, want ErrUnknownOperation", res.Err)
	}
	if h.cursor != start {
		t.Errorf("cursor = %v, want restored %v", h.cursor, start)
	}
	last := h.reports[len(h.reports)-1]
	if last.level != LevelError || last.msg != msgUnknownFailure {
		t.Errorf("last report = %v, want error %q", last, msgUnknownFailure)
	}
}

func TestRecenterRelocationPanic(t *testing.T) {
	start := geom.Vec3{X: 3, Y: 3, Z: 3}
	h := &stubHost{
		objects:     []Object{triangle(geom.Identity())},
		cursor:      start,
		originPanic: true,
		mode:        ModeEdit,
	}

	res := Recenter(h)
	if res.Kind != KindUnknownOperation {
		t.Fatalf("kind = %v, want %v", res.Kind, KindUnknownOperation)
	}
	if h.cursor != start {
		t.Errorf("cursor = %v, want restored %v", h.cursor, start)
	}
	if h.mode != ModeEdit {
		t.Errorf("mode = %v, want edit restored after panic", h.mode)
	}
}

func TestRecenterCommitFailure(t *testing.T) {
	h := &stubHost{
		objects:    []Object{triangle(geom.Identity())},
		mode:       ModeEdit,
		setModeErr: errors.New("locked"),
	}
	res := Recenter(h)
	if res.Kind != KindUnknownOperation {
		t.Fatalf("kind = %v, want %v", res.Kind, KindUnknownOperation)
	}
	if len(h.cursorWrites) != 0 {
		t.Error("cursor touched although the session could not be committed")
	}
}

func TestRecenterModeRoundTrip(t *testing.T) {
	h := &stubHost{objects: []Object{triangle(geom.Identity())}, mode: ModeEdit}

	if res := Recenter(h); !res.OK() {
		t.Fatalf("Recenter() err = %v", res.Err)
	}
	want := []Mode{ModeObject, ModeEdit}
	if len(h.modeChanges) != len(want) {
		t.Fatalf("mode changes = %v, want %v", h.modeChanges, want)
	}
	for i := range want {
		if h.modeChanges[i] != want[i] {
			t.Errorf("mode change %d = %v, want %v", i, h.modeChanges[i], want[i])
		}
	}
}

func TestRecenterObjectModeUntouched(t *testing.T) {
	h := &stubHost{objects: []Object{triangle(geom.Identity())}, mode: ModeObject}
	Recenter(h)
	if len(h.modeChanges) != 0 {
		t.Errorf("mode changes = %v, want none when already committed", h.modeChanges)
	}
}

func TestCursorInvariantAcrossOutcomes(t *testing.T) {
	start := geom.Vec3{X: 0.5, Y: -0.25, Z: 12}
	hosts := map[string]*stubHost{
		"ok":      {objects: []Object{triangle(geom.Identity())}},
		"none":    {},
		"many":    {objects: []Object{triangle(geom.Identity()), triangle(geom.Identity())}},
		"empty":   {objects: []Object{&stubObject{name: "e"}}},
		"failure": {objects: []Object{triangle(geom.Identity())}, originErr: errors.New("boom")},
		"panic":   {objects: []Object{triangle(geom.Identity())}, originPanic: true},
	}
	for name, h := range hosts {
		t.Run(name, func(t *testing.T) {
			h.cursor = start
			Recenter(h)
			if h.cursor != start {
				t.Errorf("cursor = %v, want %v", h.cursor, start)
			}
		})
	}
}

func TestCursorGuard(t *testing.T) {
	h := &stubHost{cursor: geom.Vec3{X: 1, Y: 1, Z: 1}}
	g := SnapshotCursor(h)
	h.SetCursor(geom.Vec3{X: 2, Y: 2, Z: 2})
	g.Restore()
	g.Restore()
	if h.cursor != (geom.Vec3{X: 1, Y: 1, Z: 1}) {
		t.Errorf("cursor = %v, want (1, 1, 1)", h.cursor)
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindOK, "ok"},
		{KindSelectionCount, "selection-count"},
		{KindEmptySelection, "empty-selection"},
		{KindUnknownOperation, "unknown-operation"},
		{Kind(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}
