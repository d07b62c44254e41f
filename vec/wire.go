package vec

// Stride is the number of Reals one Vec flattens to on the wire: 2 or 3
// depending on the configured dimension. Any component transporting Vecs
// over a Real-only channel (MPI messages, binary trace records) uses this
// rather than hardcoding a width, the same way the source's Vec<Real,Dim>
// has no fixed sizeof independent of Dim.
func Stride() int {
	if D == D3 {
		return 3
	}
	return 2
}

// Flatten lays vecs out as interleaved components (x0,y0[,z0],x1,y1...),
// standing in for a dedicated MPI vector datatype or an on-disk record
// layout.
func Flatten(vecs []Vec) []Real {
	stride := Stride()
	out := make([]Real, len(vecs)*stride)
	for i, v := range vecs {
		out[i*stride+0] = v.X
		out[i*stride+1] = v.Y
		if stride == 3 {
			out[i*stride+2] = v.Z
		}
	}
	return out
}

// Unflatten is Flatten's inverse: nReals must be a multiple of Stride().
func Unflatten(buf []Real, nReals int) []Vec {
	stride := Stride()
	n := nReals / stride
	out := make([]Vec, n)
	for i := 0; i < n; i++ {
		v := Vec{X: buf[i*stride+0], Y: buf[i*stride+1]}
		if stride == 3 {
			v.Z = buf[i*stride+2]
		}
		out[i] = v
	}
	return out
}
