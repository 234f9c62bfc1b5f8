//nolint:lll
package config

// Config represents the complete configuration for widen. It is loaded from
// a config file, WIDEN_* environment variables and command-line flags.
type Config struct {
	// Global settings
	ModelsDir string `mapstructure:"models_dir" yaml:"models_dir" json:"models_dir"`
	LogLevel  string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose   bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	Logging    LoggingConfig    `mapstructure:"logging" yaml:"logging" json:"logging"`
	Canvas     CanvasConfig     `mapstructure:"canvas" yaml:"canvas" json:"canvas"`
	Portrait   PortraitConfig   `mapstructure:"portrait" yaml:"portrait" json:"portrait"`
	Compositor CompositorConfig `mapstructure:"compositor" yaml:"compositor" json:"compositor"`
	Cascade    CascadeConfig    `mapstructure:"cascade" yaml:"cascade" json:"cascade"`
	Detectors  DetectorsConfig  `mapstructure:"detectors" yaml:"detectors" json:"detectors"`
	Output     OutputConfig     `mapstructure:"output" yaml:"output" json:"output"`
	Batch      BatchConfig      `mapstructure:"batch" yaml:"batch" json:"batch"`
	Metrics    MetricsConfig    `mapstructure:"metrics" yaml:"metrics" json:"metrics"`
}

// LoggingConfig selects the log handler and an optional rotating log file.
type LoggingConfig struct {
	Format     string `mapstructure:"format" yaml:"format" json:"format"`
	File       string `mapstructure:"file" yaml:"file" json:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb" json:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups" json:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days" yaml:"max_age_days" json:"max_age_days"`
	Compress   bool   `mapstructure:"compress" yaml:"compress" json:"compress"`
}

// CanvasConfig is the output size. It must be 16:9.
type CanvasConfig struct {
	Width  int `mapstructure:"width" yaml:"width" json:"width"`
	Height int `mapstructure:"height" yaml:"height" json:"height"`
}

// PortraitConfig holds the portrait-only retouch steps.
type PortraitConfig struct {
	Watermark WatermarkConfig `mapstructure:"watermark" yaml:"watermark" json:"watermark"`
	Trim      TrimConfig      `mapstructure:"trim" yaml:"trim" json:"trim"`
}

// WatermarkConfig describes the blurred bottom-left region.
type WatermarkConfig struct {
	Enabled     bool    `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	WidthRatio  float64 `mapstructure:"width_ratio" yaml:"width_ratio" json:"width_ratio"`
	HeightRatio float64 `mapstructure:"height_ratio" yaml:"height_ratio" json:"height_ratio"`
	BlurRadius  float64 `mapstructure:"blur_radius" yaml:"blur_radius" json:"blur_radius"`
}

// TrimConfig controls whitespace trimming.
type TrimConfig struct {
	Enabled     bool    `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	FuzzPercent float64 `mapstructure:"fuzz_percent" yaml:"fuzz_percent" json:"fuzz_percent"`
}

// CompositorConfig styles the blurred side panels.
type CompositorConfig struct {
	EdgePercent float64 `mapstructure:"edge_percent" yaml:"edge_percent" json:"edge_percent"`
	BlurRadius  float64 `mapstructure:"blur_radius" yaml:"blur_radius" json:"blur_radius"`
	Residual    string  `mapstructure:"residual" yaml:"residual" json:"residual"`
}

// CascadeConfig orders the crop strategies for landscape images.
type CascadeConfig struct {
	Strategies     []string   `mapstructure:"strategies" yaml:"strategies" json:"strategies"`
	WidthTolerance int        `mapstructure:"width_tolerance" yaml:"width_tolerance" json:"width_tolerance"`
	Hair           HairConfig `mapstructure:"hair" yaml:"hair" json:"hair"`
	Body           BodyConfig `mapstructure:"body" yaml:"body" json:"body"`
	DebugDir       string     `mapstructure:"debug_dir" yaml:"debug_dir" json:"debug_dir"`
}

// HairConfig tunes the hair-top estimate above a detected face.
type HairConfig struct {
	BandTop       int     `mapstructure:"band_top" yaml:"band_top" json:"band_top"`
	BandBottom    int     `mapstructure:"band_bottom" yaml:"band_bottom" json:"band_bottom"`
	BandHalfWidth int     `mapstructure:"band_half_width" yaml:"band_half_width" json:"band_half_width"`
	LineOffset    int     `mapstructure:"line_offset" yaml:"line_offset" json:"line_offset"`
	ScanDepth     int     `mapstructure:"scan_depth" yaml:"scan_depth" json:"scan_depth"`
	Threshold     float64 `mapstructure:"threshold" yaml:"threshold" json:"threshold"`
	MarginRatio   float64 `mapstructure:"margin_ratio" yaml:"margin_ratio" json:"margin_ratio"`
	FallbackRatio float64 `mapstructure:"fallback_ratio" yaml:"fallback_ratio" json:"fallback_ratio"`
}

// BodyConfig tunes the body strategy.
type BodyConfig struct {
	HeadroomRatio float64 `mapstructure:"headroom_ratio" yaml:"headroom_ratio" json:"headroom_ratio"`
}

// DetectorsConfig selects backends and box selection policies.
type DetectorsConfig struct {
	FaceBackend string     `mapstructure:"face_backend" yaml:"face_backend" json:"face_backend"`
	BodyBackend string     `mapstructure:"body_backend" yaml:"body_backend" json:"body_backend"`
	FacePolicy  string     `mapstructure:"face_policy" yaml:"face_policy" json:"face_policy"`
	BodyPolicy  string     `mapstructure:"body_policy" yaml:"body_policy" json:"body_policy"`
	Pigo        PigoConfig `mapstructure:"pigo" yaml:"pigo" json:"pigo"`
	Haar        HaarConfig `mapstructure:"haar" yaml:"haar" json:"haar"`
	HOG         HOGConfig  `mapstructure:"hog" yaml:"hog" json:"hog"`
	ONNX        ONNXConfig `mapstructure:"onnx" yaml:"onnx" json:"onnx"`
}

// PigoConfig tunes the pigo face cascade.
type PigoConfig struct {
	CascadePath  string  `mapstructure:"cascade_path" yaml:"cascade_path" json:"cascade_path"`
	MinSize      int     `mapstructure:"min_size" yaml:"min_size" json:"min_size"`
	MaxSize      int     `mapstructure:"max_size" yaml:"max_size" json:"max_size"`
	ShiftFactor  float64 `mapstructure:"shift_factor" yaml:"shift_factor" json:"shift_factor"`
	ScaleFactor  float64 `mapstructure:"scale_factor" yaml:"scale_factor" json:"scale_factor"`
	QThreshold   float64 `mapstructure:"q_threshold" yaml:"q_threshold" json:"q_threshold"`
	IoUThreshold float64 `mapstructure:"iou_threshold" yaml:"iou_threshold" json:"iou_threshold"`
}

// HaarConfig tunes the OpenCV Haar face cascade.
type HaarConfig struct {
	CascadePath  string  `mapstructure:"cascade_path" yaml:"cascade_path" json:"cascade_path"`
	ScaleFactor  float64 `mapstructure:"scale_factor" yaml:"scale_factor" json:"scale_factor"`
	MinNeighbors int     `mapstructure:"min_neighbors" yaml:"min_neighbors" json:"min_neighbors"`
	MinSize      int     `mapstructure:"min_size" yaml:"min_size" json:"min_size"`
}

// HOGConfig tunes the OpenCV HOG people detector.
type HOGConfig struct {
	WinStride      int     `mapstructure:"win_stride" yaml:"win_stride" json:"win_stride"`
	Padding        int     `mapstructure:"padding" yaml:"padding" json:"padding"`
	Scale          float64 `mapstructure:"scale" yaml:"scale" json:"scale"`
	HitThreshold   float64 `mapstructure:"hit_threshold" yaml:"hit_threshold" json:"hit_threshold"`
	FinalThreshold float64 `mapstructure:"final_threshold" yaml:"final_threshold" json:"final_threshold"`
	MaxSide        int     `mapstructure:"max_side" yaml:"max_side" json:"max_side"`
}

// ONNXConfig tunes the ONNX person detector.
type ONNXConfig struct {
	ModelPath      string  `mapstructure:"model_path" yaml:"model_path" json:"model_path"`
	LibraryPath    string  `mapstructure:"library_path" yaml:"library_path" json:"library_path"`
	InputSize      int     `mapstructure:"input_size" yaml:"input_size" json:"input_size"`
	ClassID        int     `mapstructure:"class_id" yaml:"class_id" json:"class_id"`
	ScoreThreshold float64 `mapstructure:"score_threshold" yaml:"score_threshold" json:"score_threshold"`
	IoUThreshold   float64 `mapstructure:"iou_threshold" yaml:"iou_threshold" json:"iou_threshold"`
	NumThreads     int     `mapstructure:"num_threads" yaml:"num_threads" json:"num_threads"`
}

// OutputConfig controls output files and the batch report.
type OutputConfig struct {
	Dir          string `mapstructure:"dir" yaml:"dir" json:"dir"`
	Format       string `mapstructure:"format" yaml:"format" json:"format"`
	Quality      int    `mapstructure:"quality" yaml:"quality" json:"quality"`
	Suffix       string `mapstructure:"suffix" yaml:"suffix" json:"suffix"`
	StripToken   string `mapstructure:"strip_token" yaml:"strip_token" json:"strip_token"`
	ReportFormat string `mapstructure:"report_format" yaml:"report_format" json:"report_format"`
	ReportFile   string `mapstructure:"report_file" yaml:"report_file" json:"report_file"`
}

// BatchConfig contains batch processing settings.
type BatchConfig struct {
	Recursive       bool     `mapstructure:"recursive" yaml:"recursive" json:"recursive"`
	Include         []string `mapstructure:"include" yaml:"include" json:"include"`
	Exclude         []string `mapstructure:"exclude" yaml:"exclude" json:"exclude"`
	ContinueOnError bool     `mapstructure:"continue_on_error" yaml:"continue_on_error" json:"continue_on_error"`
	// Progress is "bar", "log" or "none".
	Progress string `mapstructure:"progress" yaml:"progress" json:"progress"`
}

// MetricsConfig enables the Prometheus textfile written after a batch.
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile" yaml:"textfile" json:"textfile"`
}
