package pressure

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MajotraderLucky/freezr/errtax"
)

const sampleValid = "some avg10=1.23 avg60=2.34 avg300=3.45 total=100\n" +
	"full avg10=0.10 avg60=0.20 avg300=0.30 total=10\n"

func TestParseValidTwoLineFormat(t *testing.T) {
	mp, err := Parse(strings.NewReader(sampleValid))
	require.NoError(t, err)
	assert.Equal(t, 1.23, mp.SomeAvg10)
	assert.Equal(t, 2.34, mp.SomeAvg60)
	assert.Equal(t, 3.45, mp.SomeAvg300)
	assert.Equal(t, uint64(100), mp.SomeTotal)
	assert.Equal(t, 0.10, mp.FullAvg10)
	assert.Equal(t, uint64(10), mp.FullTotal)
}

func TestParseTolerantOfTrailingWhitespace(t *testing.T) {
	withTrailing := sampleValid + "\n  \n"
	mp, err := Parse(strings.NewReader(withTrailing))
	require.NoError(t, err)
	assert.Equal(t, 1.23, mp.SomeAvg10)
}

func TestParseErrorsOnMissingLine(t *testing.T) {
	oneLine := "some avg10=1.23 avg60=2.34 avg300=3.45 total=100\n"
	_, err := Parse(strings.NewReader(oneLine))
	assert.Error(t, err)
}

func TestParseErrorsOnWrongPrefixOrder(t *testing.T) {
	swapped := "full avg10=0.10 avg60=0.20 avg300=0.30 total=10\n" +
		"some avg10=1.23 avg60=2.34 avg300=3.45 total=100\n"
	_, err := Parse(strings.NewReader(swapped))
	assert.Error(t, err)
}

func TestParseErrorsOnMalformedValue(t *testing.T) {
	bad := "some avg10=notanumber avg60=2.34 avg300=3.45 total=100\n" +
		"full avg10=0.10 avg60=0.20 avg300=0.30 total=10\n"
	_, err := Parse(strings.NewReader(bad))
	assert.Error(t, err)
}

func TestStatusClassification(t *testing.T) {
	mp, err := Parse(strings.NewReader(sampleValid))
	require.NoError(t, err)
	assert.Equal(t, "CRITICAL", string(mp.Status()))
}

func TestReadMissingFileReturnsNotFoundKind(t *testing.T) {
	r := NewReaderAt("/nonexistent/path/for/freezr/tests")
	_, err := r.Read()
	assert.Error(t, err)
	assert.True(t, errtax.IsKind(err, errtax.NotFound))
}
