package asset

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"log/slog"
	"slices"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/vnhistory/tour3d/internal/scene"
)

const dracoExtension = "KHR_draco_mesh_compression"

// Model is the raw result of decoding, before optimization.
type Model struct {
	Root       *scene.Node
	Animations []scene.AnimationClip
}

// Request carries everything a Decoder needs for one file.
type Request struct {
	Path    string
	Data    []byte
	Dir     fs.FS
	Options Options
}

// Decoder turns model bytes into a scene graph.
type Decoder interface {
	Decode(ctx context.Context, req Request) (*Model, error)
}

// GLTFDecoder decodes glTF 2.0 JSON and GLB documents.
type GLTFDecoder struct {
	Logger *slog.Logger
}

func (d GLTFDecoder) Decode(ctx context.Context, req Request) (*Model, error) {
	doc := new(gltf.Document)
	var dec *gltf.Decoder
	if req.Dir != nil {
		dec = gltf.NewDecoderFS(bytes.NewReader(req.Data), req.Dir)
	} else {
		dec = gltf.NewDecoder(bytes.NewReader(req.Data))
	}
	if err := dec.Decode(doc); err != nil {
		return nil, fmt.Errorf("decoding gltf: %w", err)
	}
	if slices.Contains(doc.ExtensionsRequired, dracoExtension) && !req.Options.EnableDraco {
		return nil, ErrDracoDisabled
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b := &docBuilder{
		doc:       doc,
		req:       req,
		logger:    d.logger(),
		materials: make(map[int]*scene.Material),
	}
	root, err := b.build()
	if err != nil {
		return nil, err
	}
	return &Model{Root: root, Animations: b.animations()}, nil
}

func (d GLTFDecoder) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}

type docBuilder struct {
	doc       *gltf.Document
	req       Request
	logger    *slog.Logger
	materials map[int]*scene.Material
}

func (b *docBuilder) build() (*scene.Node, error) {
	root := scene.NewGroup(b.req.Path)
	for _, idx := range b.rootNodes() {
		n, err := b.node(idx, 0)
		if err != nil {
			return nil, err
		}
		root.Add(n)
	}
	return root, nil
}

// rootNodes returns the default scene's nodes, or every parentless node
// when the document has no scenes.
func (b *docBuilder) rootNodes() []int {
	if len(b.doc.Scenes) > 0 {
		s := 0
		if b.doc.Scene != nil && *b.doc.Scene < len(b.doc.Scenes) {
			s = *b.doc.Scene
		}
		return b.doc.Scenes[s].Nodes
	}
	isChild := make([]bool, len(b.doc.Nodes))
	for _, n := range b.doc.Nodes {
		for _, c := range n.Children {
			if c >= 0 && c < len(isChild) {
				isChild[c] = true
			}
		}
	}
	var roots []int
	for i := range b.doc.Nodes {
		if !isChild[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

func (b *docBuilder) node(idx, depth int) (*scene.Node, error) {
	if idx < 0 || idx >= len(b.doc.Nodes) {
		return nil, fmt.Errorf("node index %d out of range", idx)
	}
	if depth > len(b.doc.Nodes) {
		return nil, fmt.Errorf("node %d: cyclic hierarchy", idx)
	}
	src := b.doc.Nodes[idx]
	n := scene.NewGroup(src.Name)
	b.applyTransform(n, src)

	if src.Mesh != nil {
		if err := b.addMesh(n, *src.Mesh); err != nil {
			return nil, err
		}
	}
	for _, c := range src.Children {
		child, err := b.node(c, depth+1)
		if err != nil {
			return nil, err
		}
		n.Add(child)
	}
	return n, nil
}

func (b *docBuilder) applyTransform(n *scene.Node, src *gltf.Node) {
	if src.Matrix != [16]float64{} && mgl64.Mat4(src.Matrix) != mgl64.Ident4() {
		n.Position, n.Rotation, n.Scale = decompose(mgl64.Mat4(src.Matrix))
		return
	}
	n.Position = mgl64.Vec3(src.Translation)
	if src.Rotation != [4]float64{} {
		r := src.Rotation
		n.Rotation = mgl64.Quat{W: r[3], V: mgl64.Vec3{r[0], r[1], r[2]}}.Normalize()
	}
	if src.Scale != [3]float64{} {
		n.Scale = mgl64.Vec3(src.Scale)
	}
}

// decompose splits a column-major affine matrix into translation, rotation
// and scale. Shear is discarded.
func decompose(m mgl64.Mat4) (mgl64.Vec3, mgl64.Quat, mgl64.Vec3) {
	pos := mgl64.Vec3{m[12], m[13], m[14]}
	sx := mgl64.Vec3{m[0], m[1], m[2]}.Len()
	sy := mgl64.Vec3{m[4], m[5], m[6]}.Len()
	sz := mgl64.Vec3{m[8], m[9], m[10]}.Len()
	if sx == 0 || sy == 0 || sz == 0 {
		return pos, mgl64.QuatIdent(), mgl64.Vec3{sx, sy, sz}
	}
	if m.Det() < 0 {
		sx = -sx
	}
	rot := mgl64.Mat4{
		m[0] / sx, m[1] / sx, m[2] / sx, 0,
		m[4] / sy, m[5] / sy, m[6] / sy, 0,
		m[8] / sz, m[9] / sz, m[10] / sz, 0,
		0, 0, 0, 1,
	}
	return pos, mgl64.Mat4ToQuat(rot).Normalize(), mgl64.Vec3{sx, sy, sz}
}

func (b *docBuilder) addMesh(n *scene.Node, meshIdx int) error {
	if meshIdx < 0 || meshIdx >= len(b.doc.Meshes) {
		return fmt.Errorf("mesh index %d out of range", meshIdx)
	}
	mesh := b.doc.Meshes[meshIdx]
	for i, prim := range mesh.Primitives {
		geo, err := b.geometry(prim)
		if err != nil {
			return fmt.Errorf("mesh %q primitive %d: %w", mesh.Name, i, err)
		}
		if geo == nil {
			continue
		}
		name := mesh.Name
		if len(mesh.Primitives) > 1 {
			name = fmt.Sprintf("%s_%d", mesh.Name, i)
		}
		mat := b.material(prim.Material)
		var child *scene.Node
		if prim.Mode == gltf.PrimitivePoints {
			child = scene.NewPoints(name, geo, mat)
		} else {
			child = scene.NewMesh(name, geo, mat)
		}
		n.Add(child)
	}
	return nil
}

// geometry reads one primitive. It returns nil without error for Draco
// primitives that carry no uncompressed fallback.
func (b *docBuilder) geometry(prim *gltf.Primitive) (*scene.Geometry, error) {
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, nil
	}
	acc, err := b.accessor(posIdx)
	if err != nil {
		return nil, err
	}
	if _, draco := prim.Extensions[dracoExtension]; draco && acc.BufferView == nil {
		b.logger.Warn("skipping draco primitive without fallback", "path", b.req.Path)
		return nil, nil
	}

	pos, err := modeler.ReadPosition(b.doc, acc, nil)
	if err != nil {
		return nil, fmt.Errorf("reading positions: %w", err)
	}
	positions := make([]float32, 0, len(pos)*3)
	for _, p := range pos {
		positions = append(positions, p[0], p[1], p[2])
	}

	var indices []uint32
	if prim.Indices != nil {
		acc, err := b.accessor(*prim.Indices)
		if err != nil {
			return nil, err
		}
		if indices, err = modeler.ReadIndices(b.doc, acc, nil); err != nil {
			return nil, fmt.Errorf("reading indices: %w", err)
		}
	}
	geo := scene.NewGeometry(positions, indices)

	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		acc, err := b.accessor(idx)
		if err != nil {
			return nil, err
		}
		normals, err := modeler.ReadNormal(b.doc, acc, nil)
		if err != nil {
			return nil, fmt.Errorf("reading normals: %w", err)
		}
		geo.Normals = make([]float32, 0, len(normals)*3)
		for _, v := range normals {
			geo.Normals = append(geo.Normals, v[0], v[1], v[2])
		}
	}
	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		acc, err := b.accessor(idx)
		if err != nil {
			return nil, err
		}
		uvs, err := modeler.ReadTextureCoord(b.doc, acc, nil)
		if err != nil {
			return nil, fmt.Errorf("reading uvs: %w", err)
		}
		geo.UVs = make([]float32, 0, len(uvs)*2)
		for _, v := range uvs {
			geo.UVs = append(geo.UVs, v[0], v[1])
		}
	}
	return geo, nil
}

func (b *docBuilder) accessor(idx int) (*gltf.Accessor, error) {
	if idx < 0 || idx >= len(b.doc.Accessors) {
		return nil, fmt.Errorf("accessor index %d out of range", idx)
	}
	return b.doc.Accessors[idx], nil
}

func (b *docBuilder) material(idx *int) *scene.Material {
	if idx == nil || *idx < 0 || *idx >= len(b.doc.Materials) {
		return &scene.Material{Color: [4]float32{1, 1, 1, 1}, Metallic: 1, Roughness: 1, Opacity: 1}
	}
	if m, ok := b.materials[*idx]; ok {
		return m
	}
	src := b.doc.Materials[*idx]
	m := &scene.Material{
		Name:        src.Name,
		Color:       [4]float32{1, 1, 1, 1},
		Metallic:    1,
		Roughness:   1,
		Opacity:     1,
		Transparent: src.AlphaMode == gltf.AlphaBlend,
	}
	if src.DoubleSided {
		m.Side = scene.DoubleSide
	}
	if pbr := src.PBRMetallicRoughness; pbr != nil && pbr.BaseColorTexture != nil {
		m.Map = b.texture(pbr.BaseColorTexture.Index)
	}
	b.materials[*idx] = m
	return m
}

func (b *docBuilder) texture(idx int) *scene.Texture {
	if idx < 0 || idx >= len(b.doc.Textures) {
		return nil
	}
	tex := &scene.Texture{Name: fmt.Sprintf("texture_%d", idx)}
	src := b.doc.Textures[idx].Source
	if src == nil || *src < 0 || *src >= len(b.doc.Images) {
		return tex
	}
	img := b.doc.Images[*src]
	if img.Name != "" {
		tex.Name = img.Name
	}
	data, err := b.imageData(img)
	if err != nil {
		b.logger.Debug("texture size unknown", "path", b.req.Path, "texture", tex.Name, "error", err)
		return tex
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		b.logger.Debug("texture size unknown", "path", b.req.Path, "texture", tex.Name, "error", err)
		return tex
	}
	tex.Width, tex.Height = cfg.Width, cfg.Height
	return tex
}

func (b *docBuilder) imageData(img *gltf.Image) ([]byte, error) {
	switch {
	case img.BufferView != nil:
		idx := *img.BufferView
		if idx < 0 || idx >= len(b.doc.BufferViews) {
			return nil, fmt.Errorf("buffer view %d out of range", idx)
		}
		bv := b.doc.BufferViews[idx]
		if bv.Buffer < 0 || bv.Buffer >= len(b.doc.Buffers) {
			return nil, fmt.Errorf("buffer %d out of range", bv.Buffer)
		}
		data := b.doc.Buffers[bv.Buffer].Data
		end := bv.ByteOffset + bv.ByteLength
		if end > len(data) {
			return nil, fmt.Errorf("buffer view %d exceeds buffer", idx)
		}
		return data[bv.ByteOffset:end], nil
	case img.IsEmbeddedResource():
		return img.MarshalData()
	case img.URI != "" && b.req.Dir != nil:
		return fs.ReadFile(b.req.Dir, img.URI)
	default:
		return nil, fmt.Errorf("image %q not reachable", img.URI)
	}
}

func (b *docBuilder) animations() []scene.AnimationClip {
	clips := make([]scene.AnimationClip, 0, len(b.doc.Animations))
	for i, a := range b.doc.Animations {
		clip := scene.AnimationClip{Name: a.Name, Channels: len(a.Channels)}
		if clip.Name == "" {
			clip.Name = fmt.Sprintf("animation_%d", i)
		}
		for _, s := range a.Samplers {
			if s.Input < 0 || s.Input >= len(b.doc.Accessors) {
				continue
			}
			if hi := b.doc.Accessors[s.Input].Max; len(hi) > 0 && hi[0] > clip.Duration {
				clip.Duration = hi[0]
			}
		}
		clips = append(clips, clip)
	}
	return clips
}
