package colors

import (
	"fmt"
	"runtime"

	"thrift-matcher/internal/garment"
	"thrift-matcher/pkg/colorutil"

	"gocv.io/x/gocv"
)

// Seed is the fixed k-means RNG seed. Identical pixels always produce
// identical clusters.
const Seed = 42

// Cluster is one k-means cluster of foreground colors.
type Cluster struct {
	Center colorutil.RGB
	Count  int
}

// DistinctColors returns the number of different colors in pixels.
func DistinctColors(pixels []colorutil.RGB) int {
	seen := make(map[colorutil.RGB]struct{}, len(pixels))
	for _, p := range pixels {
		seen[p] = struct{}{}
	}
	return len(seen)
}

// KMeans clusters pixels into k groups in RGB space.
//
// Asking for more clusters than there are distinct colors fails with
// garment.ErrInsufficientSamples. The call is atomic: it cannot be
// interrupted once started.
func KMeans(pixels []colorutil.RGB, k int) ([]Cluster, error) {
	if k < 1 {
		return nil, fmt.Errorf("colors: cluster count must be positive, got %d", k)
	}
	if distinct := DistinctColors(pixels); distinct < k {
		return nil, fmt.Errorf("colors: %d clusters requested from %d distinct colors: %w",
			k, distinct, garment.ErrInsufficientSamples)
	}

	n := len(pixels)
	data := gocv.NewMatWithSize(n, 3, gocv.MatTypeCV32F)
	defer data.Close()
	for i, p := range pixels {
		data.SetFloatAt(i, 0, float32(p.R))
		data.SetFloatAt(i, 1, float32(p.G))
		data.SetFloatAt(i, 2, float32(p.B))
	}

	labels := gocv.NewMat()
	defer labels.Close()
	centers := gocv.NewMat()
	defer centers.Close()

	// OpenCV's default RNG is per thread; pin the goroutine so the seed
	// applies to the thread that runs the clustering.
	runtime.LockOSThread()
	gocv.SetRNGSeed(Seed)
	criteria := gocv.NewTermCriteria(gocv.EPS+gocv.MaxIter, 100, 0.2)
	gocv.KMeans(data, k, &labels, criteria, 10, gocv.KMeansPPCenters, &centers)
	runtime.UnlockOSThread()

	clusters := make([]Cluster, k)
	for i := 0; i < k; i++ {
		clusters[i].Center = colorutil.RGB{
			R: colorutil.Clamp8(centers.GetFloatAt(i, 0)),
			G: colorutil.Clamp8(centers.GetFloatAt(i, 1)),
			B: colorutil.Clamp8(centers.GetFloatAt(i, 2)),
		}
	}
	for i := 0; i < n; i++ {
		idx := int(labels.GetIntAt(i, 0))
		if idx >= 0 && idx < k {
			clusters[idx].Count++
		}
	}

	return clusters, nil
}
