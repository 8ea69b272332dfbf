package train

// StopReason tells why training ended.
type StopReason string

// Stop reasons.
const (
	StopNone    StopReason = ""         // Training did not run
	StopEpochs  StopReason = "epochs"   // Epoch limit reached
	StopGoal    StopReason = "goal"     // Training error reached Config.Goal
	StopMaxFail StopReason = "max_fail" // Validation stopped improving
)

// EpochRecord is the training evolution of one epoch. Errors are measured
// with the weights the epoch's gradient was computed on.
type EpochRecord struct {
	Epoch      int     // 0-based epoch number
	TrainError float64 // Mean training error
	ValError   float64 // Validation criterion (MSE, or SP with Config.UseSP); 0 without validation
}

// Summary describes a finished training call. A call that had no data
// returns the zero Summary.
type Summary struct {
	Epochs         int        // Epochs run
	FinalLoss      float64    // Training MSE of the returned weights
	BestValidation float64    // Best validation criterion seen; 0 without validation
	BestEpoch      int        // Epoch whose weights were kept when validating
	StopReason     StopReason // Why the loop ended
	History        []EpochRecord
}
