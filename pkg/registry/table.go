package registry

import "github.com/gfs-power/gfs-go/pkg/footswitch"

// descriptor is the static description of one rail.
type descriptor struct {
	offset  uintptr
	profile footswitch.Profile
}

// Control register offsets from the MMSS clock control base.
var descriptors = [footswitch.NumRails]descriptor{
	footswitch.GFX2D0: {0x180, footswitch.ProfileGfx2D},
	footswitch.GFX2D1: {0x184, footswitch.ProfileGfx2D},
	footswitch.GFX3D:  {0x188, footswitch.ProfileStandard},
	footswitch.IJPEG:  {0x1a0, footswitch.ProfileStandard},
	footswitch.MDP:    {0x190, footswitch.ProfileStandard},
	footswitch.ROT:    {0x18c, footswitch.ProfileStandard},
	footswitch.VED:    {0x194, footswitch.ProfileStandard},
	footswitch.VFE:    {0x198, footswitch.ProfileStandard},
	footswitch.VPE:    {0x19c, footswitch.ProfileStandard},
	footswitch.VCAP:   {0x254, footswitch.ProfileStandard},
}

// ControlOffset returns the offset of the rail's control register from the
// MMSS clock control base.
func ControlOffset(id footswitch.ID) (uintptr, bool) {
	if id >= footswitch.NumRails {
		return 0, false
	}
	return descriptors[id].offset, true
}
