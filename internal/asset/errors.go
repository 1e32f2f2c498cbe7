package asset

import (
	"errors"
	"fmt"
)

// ErrNoMesh is wrapped by AssetShapeError.
var ErrNoMesh = errors.New("no mesh found in model for instancing")

// ErrDracoDisabled is returned for Draco-compressed documents when
// Options.EnableDraco is false.
var ErrDracoDisabled = errors.New("document requires draco mesh compression but draco is disabled")

// AssetLoadError reports a failed fetch or decode of one asset.
type AssetLoadError struct {
	Path string
	Err  error
}

func (e *AssetLoadError) Error() string {
	return fmt.Sprintf("loading asset %s: %v", e.Path, e.Err)
}

func (e *AssetLoadError) Unwrap() error {
	return e.Err
}

// AssetShapeError reports an asset that lacks the geometry an operation needs.
type AssetShapeError struct {
	Path string
}

func (e *AssetShapeError) Error() string {
	return fmt.Sprintf("asset %s: %v", e.Path, ErrNoMesh)
}

func (e *AssetShapeError) Unwrap() error {
	return ErrNoMesh
}
