package royalty

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

// Define the suite, and absorb the built-in basic suite
// functionality from testify - including a T() method which
// returns the current testing context
type TestRoyaltySuite struct {
	suite.Suite
}

func (suite *TestRoyaltySuite) TestScalePercentage() {
	// "2.5" percent is 250 basis points
	scaled, err := ScalePercentage("2.5")
	suite.Require().NoError(err)
	suite.Require().Equal(uint64(250), scaled)

	scaled, err = ScalePercentage("100")
	suite.Require().NoError(err)
	suite.Require().Equal(uint64(10000), scaled)

	scaled, err = ScalePercentage("0.01")
	suite.Require().NoError(err)
	suite.Require().Equal(uint64(1), scaled)

	// three fractional digits exceed the precision, rejected not rounded
	_, err = ScalePercentage("2.505")
	suite.Require().Error(err)

	_, err = ScalePercentage("-1")
	suite.Require().Error(err)

	_, err = ScalePercentage("")
	suite.Require().Error(err)

	// beyond the uint32 range of the smartcontract argument
	_, err = ScalePercentage("42949672.96")
	suite.Require().Error(err)
}

func (suite *TestRoyaltySuite) TestValidateShares() {
	// the sum equals the declared total
	err := ValidateShares([]uint64{250, 250, 500}, 1000)
	suite.Require().NoError(err)

	err = ValidateShares([]uint64{10000}, 10000)
	suite.Require().NoError(err)

	// the sum is off by one
	err = ValidateShares([]uint64{250, 250, 499}, 1000)
	suite.Require().Error(err)

	// no beneficiaries
	err = ValidateShares([]uint64{}, 0)
	suite.Require().Error(err)

	// a dangling zero share
	err = ValidateShares([]uint64{1000, 0}, 1000)
	suite.Require().Error(err)
}

// In order for 'go test' to run this suite, we need to create
// a normal test function and pass our suite to suite.Run
func TestRoyalty(t *testing.T) {
	suite.Run(t, new(TestRoyaltySuite))
}
