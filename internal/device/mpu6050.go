package device

import "gonum.org/v1/gonum/mat"

// MPU6050 counts map the full ±2 g swing onto a 16-bit range.
const (
	mpuCodedRange   = 65535
	mpuSensingRange = 39.2266 // m/s², full ±2 g swing
)

// MPU6050 is the driver for the SparkFun MPU6050 inertial unit worn at the
// wrist.
type MPU6050 struct{}

func NewMPU6050() *MPU6050 { return &MPU6050{} }

func (*MPU6050) Name() string { return "MPU6050" }

// ExtractActual decodes one raw line and scales the accelerometer counts to
// m/s².
func (*MPU6050) ExtractActual(line string) (*mat.Dense, error) {
	ax, ay, az, err := parseLine(line)
	if err != nil {
		return nil, err
	}
	return mat.NewDense(1, 3, []float64{
		float64(ax) / mpuCodedRange * mpuSensingRange,
		float64(ay) / mpuCodedRange * mpuSensingRange,
		float64(az) / mpuCodedRange * mpuSensingRange,
	}), nil
}
