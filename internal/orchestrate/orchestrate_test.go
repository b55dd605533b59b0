package orchestrate

import (
	"testing"

	"github.com/troikacore/trailcore/internal/trail"
)

func checkCore(t *testing.T, label string, core *trail.TrailCore) {
	t.Helper()
	if err := core.Check(); err != nil {
		t.Fatalf("%s: inconsistent trail core: %v", label, err)
	}
}

func TestKNGeneratorProducesConsistentCores(t *testing.T) {
	g := NewKNGenerator(6, 4)

	kCores := g.KTrailCores()
	for i := range kCores {
		core := kCores[i]
		checkCore(t, "KN.KTrailCores", &core)
		if core.NrRounds != 2 {
			t.Fatalf("KN.KTrailCores: expected 2-round seed, got %d rounds", core.NrRounds)
		}
		if !core.Differences[1].IsInKernel() {
			t.Fatalf("KN.KTrailCores: B must be in the kernel")
		}
	}

	fromInKernel := g.FromInKernelExtension()
	for i := range fromInKernel {
		core := fromInKernel[i]
		checkCore(t, "KN.FromInKernelExtension", &core)
		if core.NrRounds != 3 {
			t.Fatalf("KN.FromInKernelExtension: expected 3 rounds, got %d", core.NrRounds)
		}
		if core.Weight.Integer > g.T3 {
			t.Fatalf("KN.FromInKernelExtension: weight %d exceeds bound %d", core.Weight.Integer, g.T3)
		}
		if core.Differences[3].IsInKernel() {
			t.Fatalf("KN.FromInKernelExtension: D must not be in the kernel")
		}
	}

	fromForward := g.FromForwardExtension(kCores)
	for i := range fromForward {
		core := fromForward[i]
		checkCore(t, "KN.FromForwardExtension", &core)
		if core.NrRounds != 3 {
			t.Fatalf("KN.FromForwardExtension: expected 3 rounds, got %d", core.NrRounds)
		}
		if !core.Differences[1].IsInKernel() {
			t.Fatalf("KN.FromForwardExtension: B must stay in the kernel")
		}
		if core.Differences[3].IsInKernel() {
			t.Fatalf("KN.FromForwardExtension: D must not be in the kernel")
		}
	}
}

func TestNKGeneratorProducesConsistentCores(t *testing.T) {
	g := NewNKGenerator(6, 4)

	kCores := g.KTrailCores()
	for i := range kCores {
		core := kCores[i]
		checkCore(t, "NK.KTrailCores", &core)
		if !core.Differences[1].IsInKernel() {
			t.Fatalf("NK.KTrailCores: B must be in the kernel")
		}
	}

	fromInKernel := g.FromInKernelExtension()
	for i := range fromInKernel {
		core := fromInKernel[i]
		checkCore(t, "NK.FromInKernelExtension", &core)
		if !core.Differences[3].IsInKernel() {
			t.Fatalf("NK.FromInKernelExtension: D must be in the kernel")
		}
	}

	fromBackward := g.FromBackwardExtension(kCores)
	for i := range fromBackward {
		core := fromBackward[i]
		checkCore(t, "NK.FromBackwardExtension", &core)
		if core.Differences[1].IsInKernel() {
			t.Fatalf("NK.FromBackwardExtension: B must not be in the kernel")
		}
		if !core.Differences[3].IsInKernel() {
			t.Fatalf("NK.FromBackwardExtension: D must stay in the kernel")
		}
	}
}

func TestNNGeneratorProducesConsistentCores(t *testing.T) {
	g := NewNNGenerator(6)

	forward, forwardHistogram, forwardTotal := g.FromForwardExtension()
	var histogramSum uint64
	for _, n := range forwardHistogram {
		histogramSum += n
	}
	if histogramSum != forwardTotal {
		t.Fatalf("NN.FromForwardExtension: histogram sums to %d, total is %d", histogramSum, forwardTotal)
	}
	for i := range forward {
		core := forward[i]
		checkCore(t, "NN.FromForwardExtension", &core)
		if core.Differences[1].IsInKernel() || core.Differences[3].IsInKernel() {
			t.Fatalf("NN.FromForwardExtension: neither B nor D may be in the kernel")
		}
	}

	backward, backwardHistogram, backwardTotal := g.FromBackwardExtension()
	histogramSum = 0
	for _, n := range backwardHistogram {
		histogramSum += n
	}
	if histogramSum != backwardTotal {
		t.Fatalf("NN.FromBackwardExtension: histogram sums to %d, total is %d", histogramSum, backwardTotal)
	}
	for i := range backward {
		core := backward[i]
		checkCore(t, "NN.FromBackwardExtension", &core)
		if core.Differences[1].IsInKernel() || core.Differences[3].IsInKernel() {
			t.Fatalf("NN.FromBackwardExtension: neither B nor D may be in the kernel")
		}
	}
}

func TestKKGeneratorProducesConsistentCores(t *testing.T) {
	g := NewKKGenerator(6)

	found := g.Generate()
	for i := range found {
		core := found[i]
		checkCore(t, "KK.Generate", &core)
		if core.NrRounds != 3 {
			t.Fatalf("KK.Generate: expected 3 rounds, got %d", core.NrRounds)
		}
		if !core.Differences[1].IsInKernel() {
			t.Fatalf("KK.Generate: B must be in the kernel")
		}
		if !core.Differences[3].IsInKernel() {
			t.Fatalf("KK.Generate: D must be in the kernel")
		}
		if core.Weight.Integer > g.T3 {
			t.Fatalf("KK.Generate: weight %d exceeds bound %d", core.Weight.Integer, g.T3)
		}
	}
}

func TestEvenFloorRoundsDownToEven(t *testing.T) {
	cases := map[uint32]uint32{0: 0, 1: 0, 2: 2, 3: 2, 6: 6, 7: 6}
	for in, want := range cases {
		if got := evenFloor(in); got != want {
			t.Fatalf("evenFloor(%d) = %d, want %d", in, got, want)
		}
	}
}
