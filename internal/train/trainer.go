// Package train adjusts the trainable weights of a network to fit data.
//
// Training is full-batch error back-propagation: every epoch accumulates the
// weighted loss gradient of each sample, then the configured update rule
// (gradient descent, RProp or Adam) changes every trainable, unfrozen
// parameter once. Layers that are not trainable keep their exact values.
//
// Example:
//
//	tr, err := train.New(net, train.Config{Algorithm: "trainrp", Epochs: 500})
//	if err != nil {
//	    return err
//	}
//	summary, err := tr.Train(train.NewDataset(inputs, targets), train.NoData())
package train

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/fastnet/internal/nn"
	"github.com/born-ml/fastnet/internal/parallel"
	"github.com/born-ml/fastnet/internal/report"
)

// samplerStream separates the sampling stream from weight initialization.
const samplerStream = 0x2545f4914f6cdd1d

// Trainer trains one network.
//
// The network must not be propagated or modified concurrently with a
// training call.
type Trainer struct {
	net  *nn.Network
	cfg  Config
	loss nn.Loss
	rep  report.Reporter
	par  parallel.Config
}

// New creates a Trainer for net. cfg is validated and completed with defaults.
func New(net *nn.Network, cfg Config) (*Trainer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	return &Trainer{
		net:  net,
		cfg:  cfg,
		loss: nn.SquaredError{},
		rep:  cfg.Reporter,
		par:  cfg.parallelism(),
	}, nil
}

// Train is shorthand for New(net, cfg) followed by Train(data, NoData()).
func Train(net *nn.Network, data Dataset, cfg Config) (Summary, error) {
	t, err := New(net, cfg)
	if err != nil {
		return Summary{}, err
	}
	return t.Train(data, NoData())
}

// Config returns the effective configuration.
func (t *Trainer) Config() Config {
	return t.cfg
}

// Train fits the network to data.
//
// When val holds samples, its MSE is measured every epoch, the weights with
// the lowest value are restored at the end, and Config.MaxFail may stop
// training early.
//
// An absent or empty data set is a no-op returning the zero Summary. Every
// sample of data and val is checked before anything is changed: a count
// mismatch returns a *nn.ShapeError and a wrong vector length a
// *nn.DimensionError, and the network is left untouched.
func (t *Trainer) Train(data, val Dataset) (Summary, error) {
	if data.Empty() {
		return Summary{}, nil
	}
	if err := data.validate("Train", t.net); err != nil {
		return Summary{}, err
	}
	if !val.Empty() {
		if err := val.validate("Train", t.net); err != nil {
			return Summary{}, err
		}
	}

	rng := rand.New(rand.NewPCG(t.cfg.Seed, samplerStream))
	var plan func() []sample
	if t.cfg.EpochSize == 0 {
		all := make([]sample, data.Len())
		w := 1 / float64(data.Len())
		for k := range all {
			all[k] = sample{input: data.inputs[k], target: data.targets[k], weight: w}
		}
		plan = func() []sample { return all }
	} else {
		sm := newSampler(data.Len(), rng)
		buf := make([]sample, t.cfg.EpochSize)
		w := 1 / float64(t.cfg.EpochSize)
		plan = func() []sample {
			for i := range buf {
				k := sm.next()
				buf[i] = sample{input: data.inputs[k], target: data.targets[k], weight: w}
			}
			return buf
		}
	}

	var validate func() float64
	if !val.Empty() {
		validate = func() float64 { return t.datasetError(val) }
	}

	t.rep.Report("starting training",
		"algorithm", t.cfg.Algorithm, "samples", data.Len(), "validation", val.Len(), "epochs", t.cfg.Epochs)
	s, err := t.run(plan, validate, false)
	if err != nil {
		return Summary{}, err
	}
	s.FinalLoss = t.datasetError(data)
	return s, nil
}

// TrainPatterns fits the network to a pattern recognition set.
//
// Every class contributes equally to the gradient. With Config.EpochSize set,
// that many samples are drawn from each class per epoch. When val holds
// samples it is used like the validation set of Train; with Config.UseSP and
// two classes the criterion is the SP product (higher is better) instead of
// the MSE.
//
// Empty input is a no-op; malformed sets fail before any change.
func (t *Trainer) TrainPatterns(set, val PatternSet) (Summary, error) {
	if set.Empty() {
		return Summary{}, nil
	}
	if err := set.validate("TrainPatterns", t.net); err != nil {
		return Summary{}, err
	}
	if !val.Empty() {
		if err := val.validate("TrainPatterns", t.net); err != nil {
			return Summary{}, err
		}
		if val.NumClasses() != set.NumClasses() {
			return Summary{}, &nn.ShapeError{
				Op:      "TrainPatterns",
				Details: fmt.Sprintf("validation has %d classes, training has %d", val.NumClasses(), set.NumClasses()),
			}
		}
	}
	useSP := t.cfg.UseSP && !val.Empty()
	if useSP && set.NumClasses() != 2 {
		return Summary{}, fmt.Errorf("%w: SP criterion needs 2 classes, got %d", ErrConfig, set.NumClasses())
	}

	targets := set.Targets()
	nc := float64(set.NumClasses())
	rng := rand.New(rand.NewPCG(t.cfg.Seed, samplerStream))

	var plan func() []sample
	if t.cfg.EpochSize == 0 {
		all := make([]sample, 0, set.Len())
		for c, class := range set.classes {
			w := 1 / (nc * float64(len(class)))
			for _, x := range class {
				all = append(all, sample{input: x, target: targets[c], weight: w})
			}
		}
		plan = func() []sample { return all }
	} else {
		samplers := make([]*sampler, set.NumClasses())
		for c, class := range set.classes {
			samplers[c] = newSampler(len(class), rng)
		}
		buf := make([]sample, 0, t.cfg.EpochSize*set.NumClasses())
		w := 1 / (nc * float64(t.cfg.EpochSize))
		plan = func() []sample {
			buf = buf[:0]
			for c, class := range set.classes {
				for range t.cfg.EpochSize {
					buf = append(buf, sample{input: class[samplers[c].next()], target: targets[c], weight: w})
				}
			}
			return buf
		}
	}

	var validate func() float64
	if !val.Empty() {
		validate = func() float64 {
			mse, sp := t.patternErrors(val)
			if useSP {
				return sp
			}
			return mse
		}
	}

	t.rep.Report("starting pattern recognition training",
		"algorithm", t.cfg.Algorithm, "classes", set.NumClasses(), "samples", set.Len(),
		"use_sp", useSP, "epochs", t.cfg.Epochs)
	s, err := t.run(plan, validate, useSP)
	if err != nil {
		return Summary{}, err
	}
	s.FinalLoss, _ = t.patternErrors(set)
	return s, nil
}

// run is the epoch loop shared by Train and TrainPatterns. validate is nil
// without validation data; maximize selects "higher is better".
func (t *Trainer) run(plan func() []sample, validate func() float64, maximize bool) (Summary, error) {
	opt, err := t.cfg.optimizer()
	if err != nil {
		return Summary{}, err
	}
	params := t.net.Parameters()
	for _, p := range params {
		p.ZeroGrad()
	}

	bp := newBackprop(t.net, t.loss)
	var wss []*workspace

	var (
		s        = Summary{StopReason: StopEpochs, History: make([]EpochRecord, 0, t.cfg.Epochs)}
		bestW    []*mat.Dense
		bestB    [][]float64
		numFails int
	)
	if maximize {
		s.BestValidation = -1
	}

	for epoch := range t.cfg.Epochs {
		batch := plan()
		ranges := parallel.Chunks(len(batch), t.par)
		for len(wss) < len(ranges) {
			wss = append(wss, newWorkspace(t.net))
		}
		used := wss[:len(ranges)]

		err := parallel.ForChunks(len(batch), func(c int, r parallel.Range) error {
			ws := used[c]
			ws.reset()
			for _, smp := range batch[r.Start:r.End] {
				bp.accumulate(ws, smp)
			}
			return nil
		}, t.par)
		if err != nil {
			return Summary{}, err
		}

		var sum float64
		for _, ws := range used {
			sum += ws.err
		}
		trnError := sum / float64(len(batch))

		rec := EpochRecord{Epoch: epoch, TrainError: trnError}
		if validate != nil {
			rec.ValError = validate()
			if (maximize && rec.ValError > s.BestValidation) || (!maximize && (epoch == 0 || rec.ValError < s.BestValidation)) {
				s.BestValidation = rec.ValError
				s.BestEpoch = epoch
				bestW, bestB = t.net.Weights(), t.net.Biases()
				numFails = 0
			} else {
				numFails++
			}
		}
		s.History = append(s.History, rec)
		s.Epochs = epoch + 1

		if t.cfg.Show > 0 && epoch%t.cfg.Show == 0 {
			t.status(rec, validate != nil, maximize)
		}

		bp.reduce(used)
		opt.Step(params)
		opt.EndEpoch()

		if t.cfg.Goal > 0 && trnError <= t.cfg.Goal {
			s.StopReason = StopGoal
			t.rep.Report("training goal reached", "epoch", epoch, "mse_train", trnError)
			break
		}
		if validate != nil && t.cfg.MaxFail > 0 && numFails >= t.cfg.MaxFail {
			s.StopReason = StopMaxFail
			t.rep.Report("maximum number of failures reached", "epoch", epoch, "max_fail", t.cfg.MaxFail)
			break
		}
	}

	if bestW != nil {
		if err := t.net.LoadWeights(bestW, bestB); err != nil {
			return Summary{}, fmt.Errorf("restore best weights: %w", err)
		}
	}
	t.rep.Report("training finished", "epochs", s.Epochs, "stop", string(s.StopReason))
	return s, nil
}

func (t *Trainer) status(rec EpochRecord, hasVal, sp bool) {
	switch {
	case !hasVal:
		t.rep.Report("epoch", "epoch", rec.Epoch, "mse_train", rec.TrainError)
	case sp:
		t.rep.Report("epoch", "epoch", rec.Epoch, "mse_train", rec.TrainError, "sp_val", rec.ValError)
	default:
		t.rep.Report("epoch", "epoch", rec.Epoch, "mse_train", rec.TrainError, "mse_val", rec.ValError)
	}
}

// datasetError returns the mean sample error of d. d must be validated.
func (t *Trainer) datasetError(d Dataset) float64 {
	out, err := t.net.Sim(d.inputs)
	if err != nil || len(out) == 0 {
		return 0
	}
	var sum float64
	for k, y := range out {
		sum += t.loss.Error(y, d.targets[k])
	}
	return sum / float64(len(out))
}

// patternErrors returns the mean sample error of s over all classes and,
// for two classes, the SP product of the first output.
func (t *Trainer) patternErrors(s PatternSet) (mse, sp float64) {
	targets := s.Targets()
	outputs := make([][][]float64, s.NumClasses())
	var sum float64
	var n int
	for c, class := range s.classes {
		out, err := t.net.Sim(class)
		if err != nil {
			return 0, 0
		}
		outputs[c] = out
		for _, y := range out {
			sum += t.loss.Error(y, targets[c])
		}
		n += len(out)
	}
	if n > 0 {
		mse = sum / float64(n)
	}
	if s.NumClasses() == 2 {
		signal := firstOutputs(outputs[0])
		noise := firstOutputs(outputs[1])
		sp = SP(signal, noise, targets[0][0], targets[1][0])
	}
	return mse, sp
}

func firstOutputs(out [][]float64) []float64 {
	v := make([]float64, len(out))
	for k, y := range out {
		v[k] = y[0]
	}
	return v
}
