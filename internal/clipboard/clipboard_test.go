package clipboard

import "testing"

func TestMaxPropertyBytes(t *testing.T) {
	for _, tc := range []struct {
		units uint16
		want  int
	}{
		{65535, 65535*4 - 24},
		{4096, 4096*4 - 24},
		{6, 0},
		{0, 0},
	} {
		if got := maxPropertyBytes(tc.units); got != tc.want {
			t.Errorf("maxPropertyBytes(%d) = %d, want %d", tc.units, got, tc.want)
		}
	}
}
