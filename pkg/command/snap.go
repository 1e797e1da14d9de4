package command

import "github.com/chazu/rapidorigin/pkg/origin"

// SnapOriginID is the identifier of the Rapid Snap Origin command.
const SnapOriginID = "object.rapid_snap_origin"

// SnapOrigin returns the command that moves the selected object's origin
// to the center of its selected vertices. It always finishes; failures are
// reported through the host and carried in the Outcome.
func SnapOrigin() *Command {
	return &Command{
		ID:          SnapOriginID,
		Label:       "Rapid Snap Origin",
		Description: "Snap the object's origin to the selected vertices",
		Poll: func(h origin.Host) bool {
			return h.ActiveObject() != nil
		},
		Execute: func(h origin.Host) Outcome {
			return Outcome{Status: StatusFinished, Result: origin.Recenter(h)}
		},
	}
}

// DefaultRegistry returns a registry with SnapOrigin in the view menu and
// the mesh edit context menu.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	if err := r.Register(SnapOrigin(), MenuMeshContext, MenuView); err != nil {
		panic(err)
	}
	return r
}
