package engine2D

import "errors"

var (
	ErrBatchOpen     = errors.New("draw batch already begun")
	ErrBatchClosed   = errors.New("draw batch not begun")
	ErrNilTexture    = errors.New("draw with nil texture")
	ErrUnknownEffect = errors.New("unknown effect kind")
)
