//go:build !opus

package capture

func newOpusMixer() (opusMixer, error) {
	return nil, errOpusUnavailable
}
