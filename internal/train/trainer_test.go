package train_test

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/fastnet/internal/nn"
	"github.com/born-ml/fastnet/internal/optim"
	"github.com/born-ml/fastnet/internal/report"
	"github.com/born-ml/fastnet/internal/train"
)

var (
	xorInputs  = [][]float64{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}
	xorTargets = [][]float64{{-1}, {1}, {1}, {-1}}
)

func xorNet(t *testing.T, trainable ...bool) *nn.Network {
	t.Helper()
	if len(trainable) == 0 {
		trainable = []bool{true, true}
	}
	net, err := nn.New([]int{2, 4, 1}, []string{"tansig", "tansig"}, trainable)
	require.NoError(t, err)
	net.InitWeights(0.5, 7)
	return net
}

// snapshot captures every weight and bias of net.
type snapshot struct {
	weights [][]float64
	biases  [][]float64
}

func snap(net *nn.Network) snapshot {
	var s snapshot
	for _, w := range net.Weights() {
		s.weights = append(s.weights, append([]float64(nil), w.RawMatrix().Data...))
	}
	s.biases = net.Biases()
	return s
}

func mse(t *testing.T, net *nn.Network, inputs, targets [][]float64) float64 {
	t.Helper()
	out, err := net.Sim(inputs)
	require.NoError(t, err)
	var sum float64
	for k, y := range out {
		sum += nn.SquaredError{}.Error(y, targets[k])
	}
	return sum / float64(len(out))
}

func TestTrain_EmptyDataIsNoOp(t *testing.T) {
	cases := map[string]train.Dataset{
		"absent":      train.NoData(),
		"zero value":  {},
		"nil slices":  train.NewDataset(nil, nil),
		"empty slice": train.NewDataset([][]float64{}, [][]float64{}),
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			net := xorNet(t)
			before := snap(net)

			s, err := train.Train(net, data, train.Config{Algorithm: optim.TrainRP})
			require.NoError(t, err)
			assert.Equal(t, train.Summary{}, s)
			assert.Equal(t, before, snap(net))
		})
	}
}

func TestTrainPatterns_EmptyIsNoOp(t *testing.T) {
	net, err := nn.New([]int{2, 1}, []string{"tansig"}, []bool{true})
	require.NoError(t, err)
	net.InitWeights(0.3, 1)
	before := snap(net)

	tr, err := train.New(net, train.Config{})
	require.NoError(t, err)

	for _, set := range []train.PatternSet{train.NoPatterns(), train.NewPatternSet(), train.NewPatternSet(nil, nil)} {
		s, err := tr.TrainPatterns(set, train.NoPatterns())
		require.NoError(t, err)
		assert.Equal(t, train.Summary{}, s)
	}
	assert.Equal(t, before, snap(net))
}

func TestTrain_NonTrainableLayersUnchanged(t *testing.T) {
	for _, alg := range optim.Algorithms() {
		t.Run(alg, func(t *testing.T) {
			net := xorNet(t, false, true)
			before := snap(net)

			_, err := train.Train(net, train.NewDataset(xorInputs, xorTargets), train.Config{Algorithm: alg, Epochs: 20})
			require.NoError(t, err)

			after := snap(net)
			assert.Equal(t, before.weights[0], after.weights[0], "frozen layer weights")
			assert.Equal(t, before.biases[0], after.biases[0], "frozen layer bias")
			assert.NotEqual(t, before.weights[1], after.weights[1], "trainable layer must move")
		})
	}
}

func TestTrain_AllFrozenIsStable(t *testing.T) {
	net := xorNet(t, false, false)
	before := snap(net)

	s, err := train.Train(net, train.NewDataset(xorInputs, xorTargets), train.Config{Epochs: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, s.Epochs)
	assert.Equal(t, before, snap(net))
}

func TestTrain_DimensionErrorLeavesNetworkUntouched(t *testing.T) {
	tests := []struct {
		name    string
		inputs  [][]float64
		targets [][]float64
		what    string
		index   int
	}{
		{"short input", [][]float64{{1, 1}, {1}}, [][]float64{{1}, {1}}, "input", 1},
		{"long target", [][]float64{{1, 1}, {1, 0}, {0, 0}}, [][]float64{{1}, {1}, {1, 2}}, "target", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			net := xorNet(t)
			before := snap(net)

			_, err := train.Train(net, train.NewDataset(tt.inputs, tt.targets), train.Config{})
			require.ErrorIs(t, err, nn.ErrDimension)

			var de *nn.DimensionError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, tt.what, de.What)
			assert.Equal(t, tt.index, de.Index)
			assert.Equal(t, before, snap(net))
		})
	}
}

func TestTrain_CountMismatch(t *testing.T) {
	net := xorNet(t)
	_, err := train.Train(net, train.NewDataset(xorInputs, xorTargets[:3]), train.Config{})
	require.ErrorIs(t, err, nn.ErrShape)
}

func TestTrain_BadValidationFailsFirst(t *testing.T) {
	net := xorNet(t)
	before := snap(net)
	tr, err := train.New(net, train.Config{})
	require.NoError(t, err)

	_, err = tr.Train(train.NewDataset(xorInputs, xorTargets), train.NewDataset([][]float64{{1, 2, 3}}, [][]float64{{1}}))
	require.ErrorIs(t, err, nn.ErrDimension)
	assert.Equal(t, before, snap(net))
}

func TestTrain_ReducesLoss(t *testing.T) {
	for _, alg := range optim.Algorithms() {
		t.Run(alg, func(t *testing.T) {
			net := xorNet(t)
			initial := mse(t, net, xorInputs, xorTargets)

			s, err := train.Train(net, train.NewDataset(xorInputs, xorTargets), train.Config{
				Algorithm:    alg,
				LearningRate: 0.05,
				Epochs:       300,
				Workers:      1,
			})
			require.NoError(t, err)
			assert.Equal(t, 300, s.Epochs)
			assert.Equal(t, train.StopEpochs, s.StopReason)
			require.Len(t, s.History, 300)
			assert.Less(t, s.FinalLoss, initial)
			assert.InDelta(t, mse(t, net, xorInputs, xorTargets), s.FinalLoss, 1e-12)
			assert.InDelta(t, initial, s.History[0].TrainError, 1e-12, "epoch 0 error uses the initial weights")
		})
	}
}

func TestTrain_RPropSolvesXOR(t *testing.T) {
	net := xorNet(t)
	s, err := train.Train(net, train.NewDataset(xorInputs, xorTargets), train.Config{
		Algorithm: optim.TrainRP,
		Epochs:    3000,
		Goal:      1e-2,
	})
	require.NoError(t, err)
	assert.Equal(t, train.StopGoal, s.StopReason)

	out, err := net.Sim(xorInputs)
	require.NoError(t, err)
	for k, y := range out {
		assert.Equal(t, math.Signbit(xorTargets[k][0]), math.Signbit(y[0]), "sample %d", k)
	}
}

func TestTrain_Goal(t *testing.T) {
	net := xorNet(t)
	s, err := train.Train(net, train.NewDataset(xorInputs, xorTargets), train.Config{Goal: 1e9, Epochs: 50})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Epochs)
	assert.Equal(t, train.StopGoal, s.StopReason)
}

func TestTrain_MaxFailRestoresBestWeights(t *testing.T) {
	net, err := nn.New([]int{1, 1}, []string{"purelin"}, []bool{true})
	require.NoError(t, err)

	tr, err := train.New(net, train.Config{MaxFail: 2, Epochs: 100})
	require.NoError(t, err)

	// Validation wants the opposite of training, so it only gets worse.
	s, err := tr.Train(
		train.NewDataset([][]float64{{1}}, [][]float64{{1}}),
		train.NewDataset([][]float64{{1}}, [][]float64{{-1}}),
	)
	require.NoError(t, err)

	assert.Equal(t, train.StopMaxFail, s.StopReason)
	assert.Equal(t, 3, s.Epochs)
	assert.Equal(t, 0, s.BestEpoch)
	assert.InDelta(t, 1.0, s.BestValidation, 1e-15)
	assert.InDelta(t, 1.21, s.History[1].ValError, 1e-12)

	assert.Equal(t, 0.0, net.Weights()[0].At(0, 0))
	assert.Equal(t, []float64{0}, net.Biases()[0])
	assert.InDelta(t, 1.0, s.FinalLoss, 1e-15)
}

func TestTrain_FrozenNodesAndDisabledBias(t *testing.T) {
	net := xorNet(t)
	require.NoError(t, net.Layer(0).SetFrozen(2, true))
	net.Layer(1).SetUsingBias(false)
	before := snap(net)

	_, err := train.Train(net, train.NewDataset(xorInputs, xorTargets), train.Config{Algorithm: optim.TrainRP, Epochs: 10})
	require.NoError(t, err)

	after := snap(net)
	assert.Equal(t, before.weights[0][4:6], after.weights[0][4:6], "frozen node row")
	assert.Equal(t, before.biases[0][2], after.biases[0][2], "frozen node bias")
	assert.NotEqual(t, before.weights[0][0:2], after.weights[0][0:2])
	assert.Equal(t, []float64{0}, after.biases[1])
}

func TestTrain_WorkersAreReproducible(t *testing.T) {
	inputs := make([][]float64, 97)
	targets := make([][]float64, 97)
	for k := range inputs {
		x := float64(k)/48 - 1
		inputs[k] = []float64{x, x * x}
		targets[k] = []float64{math.Sin(3 * x)}
	}
	data := train.NewDataset(inputs, targets)

	run := func(workers int) snapshot {
		net := xorNet(t)
		_, err := train.Train(net, data, train.Config{Algorithm: optim.TrainGD, LearningRate: 0.1, Epochs: 15, Workers: workers})
		require.NoError(t, err)
		return snap(net)
	}

	a, b := run(4), run(4)
	assert.Equal(t, a, b, "same worker count must give identical weights")

	seq := run(1)
	for i := range a.weights {
		assert.InDeltaSlice(t, seq.weights[i], a.weights[i], 1e-9)
	}
}

func TestTrain_EpochSizeSampling(t *testing.T) {
	run := func(seed uint64) (snapshot, train.Summary) {
		net := xorNet(t)
		s, err := train.Train(net, train.NewDataset(xorInputs, xorTargets), train.Config{
			Algorithm: optim.TrainGD,
			Epochs:    7,
			EpochSize: 3,
			Seed:      seed,
		})
		require.NoError(t, err)
		return snap(net), s
	}

	a, sa := run(11)
	b, _ := run(11)
	c, _ := run(12)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, 7, sa.Epochs)
}

func TestTrain_ShowReports(t *testing.T) {
	var buf bytes.Buffer
	rep := report.New(slog.New(slog.NewTextHandler(&buf, nil)))

	net := xorNet(t)
	_, err := train.Train(net, train.NewDataset(xorInputs, xorTargets), train.Config{Epochs: 6, Show: 2, Reporter: rep})
	require.NoError(t, err)

	out := buf.String()
	assert.Equal(t, 3, strings.Count(out, "msg=epoch "))
	assert.Contains(t, out, "mse_train=")
	assert.Contains(t, out, "training finished")
}

func TestTrainPatterns_SPValidation(t *testing.T) {
	signal := [][]float64{{1, 0.8}, {0.9, 1.2}, {1.3, 1}, {0.7, 0.9}}
	noise := [][]float64{{-1, -0.7}, {-1.1, -1}, {-0.8, -1.3}}

	net, err := nn.New([]int{2, 1}, []string{"tansig"}, []bool{true})
	require.NoError(t, err)

	tr, err := train.New(net, train.Config{Algorithm: optim.TrainRP, Epochs: 30, UseSP: true, Show: 10})
	require.NoError(t, err)

	set := train.NewPatternSet(signal, noise)
	s, err := tr.TrainPatterns(set, set)
	require.NoError(t, err)

	assert.InDelta(t, 0.0, s.History[0].ValError, 1e-15, "zero weights cannot separate")
	assert.InDelta(t, 1.0, s.BestValidation, 1e-12)
	assert.Less(t, s.FinalLoss, 1.0)

	out, err := net.PropagateInput([]float64{1, 1})
	require.NoError(t, err)
	assert.Greater(t, out[0], 0.0)
}

func TestTrainPatterns_MultiClass(t *testing.T) {
	classes := [][][]float64{
		{{1, 0, 0}, {0.9, 0.1, 0}},
		{{0, 1, 0}, {0.1, 0.9, 0}},
		{{0, 0, 1}, {0, 0.1, 0.9}, {0.1, 0, 1}},
	}
	net, err := nn.New([]int{3, 3}, []string{"tansig"}, []bool{true})
	require.NoError(t, err)

	tr, err := train.New(net, train.Config{Algorithm: optim.TrainRP, Epochs: 50, EpochSize: 2, Seed: 3})
	require.NoError(t, err)

	set := train.NewPatternSet(classes...)
	initial := mse(t, net, classes[0], [][]float64{{1, -1, -1}, {1, -1, -1}})

	s, err := tr.TrainPatterns(set, train.NoPatterns())
	require.NoError(t, err)
	assert.Equal(t, 50, s.Epochs)
	assert.Less(t, mse(t, net, classes[0], [][]float64{{1, -1, -1}, {1, -1, -1}}), initial)
}

func TestTrainPatterns_Errors(t *testing.T) {
	net, err := nn.New([]int{2, 1}, []string{"tansig"}, []bool{true})
	require.NoError(t, err)
	tr, err := train.New(net, train.Config{UseSP: true})
	require.NoError(t, err)

	good := [][]float64{{1, 1}}

	_, err = tr.TrainPatterns(train.NewPatternSet(good), train.NoPatterns())
	require.ErrorIs(t, err, nn.ErrShape, "one class")

	_, err = tr.TrainPatterns(train.NewPatternSet(good, good, good), train.NoPatterns())
	require.ErrorIs(t, err, nn.ErrShape, "three classes need three outputs")

	_, err = tr.TrainPatterns(train.NewPatternSet(good, nil), train.NoPatterns())
	require.ErrorIs(t, err, nn.ErrShape, "empty class")

	_, err = tr.TrainPatterns(train.NewPatternSet(good, [][]float64{{1, 1}, {1}}), train.NoPatterns())
	require.ErrorIs(t, err, nn.ErrDimension)
	var de *nn.DimensionError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "class 1 input", de.What)
	assert.Equal(t, 1, de.Index)
}

func TestPatternSet_Targets(t *testing.T) {
	two := train.NewPatternSet([][]float64{{0}}, [][]float64{{1}})
	assert.Equal(t, 1, two.OutputSize())
	assert.Equal(t, [][]float64{{1}, {-1}}, two.Targets())

	three := train.NewPatternSet([][]float64{{0}}, [][]float64{{1}}, [][]float64{{2}, {3}})
	assert.Equal(t, 3, three.OutputSize())
	assert.Equal(t, 4, three.Len())
	assert.Equal(t, [][]float64{{1, -1, -1}, {-1, 1, -1}, {-1, -1, 1}}, three.Targets())
}

func TestDataset_Variants(t *testing.T) {
	assert.False(t, train.NoData().Present())
	assert.True(t, train.NoData().Empty())

	empty := train.NewDataset(nil, nil)
	assert.True(t, empty.Present())
	assert.True(t, empty.Empty())

	d := train.NewDataset(xorInputs, xorTargets)
	assert.False(t, d.Empty())
	assert.Equal(t, 4, d.Len())
	assert.Equal(t, xorInputs, d.Inputs())
	assert.Equal(t, xorTargets, d.Targets())
}

func TestConfig(t *testing.T) {
	net := xorNet(t)

	tr, err := train.New(net, train.Config{})
	require.NoError(t, err)
	cfg := tr.Config()
	assert.Equal(t, optim.TrainGD, cfg.Algorithm)
	assert.InDelta(t, 0.05, cfg.LearningRate, 0)
	assert.InDelta(t, 1.0, cfg.DecFactor, 0)
	assert.Equal(t, 100, cfg.Epochs)
	assert.NotNil(t, cfg.Reporter)

	tr, err = train.New(net, train.Config{Algorithm: optim.TrainAdam})
	require.NoError(t, err)
	assert.InDelta(t, 0.001, tr.Config().LearningRate, 0, "trainadam keeps its own default")

	tr, err = train.New(net, train.Config{Algorithm: optim.TrainAdam, LearningRate: 0.02})
	require.NoError(t, err)
	assert.InDelta(t, 0.02, tr.Config().LearningRate, 0)

	invalid := []train.Config{
		{Algorithm: "trainlm"},
		{LearningRate: -1},
		{DecFactor: 1.5},
		{Momentum: 1},
		{Epochs: -1},
		{Goal: -0.1},
		{MaxFail: -1},
		{Show: -1},
		{EpochSize: -2},
		{Workers: -1},
	}
	for _, c := range invalid {
		_, err := train.New(net, c)
		assert.ErrorIs(t, err, train.ErrConfig, "%+v", c)
	}

	_, err = train.New(net, train.Config{Algorithm: "trainlm"})
	assert.ErrorIs(t, err, optim.ErrUnknownAlgorithm)
}
