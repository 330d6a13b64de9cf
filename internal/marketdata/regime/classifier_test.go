package regime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassifyUncertainBeforeEnoughHistory(t *testing.T) {
	c := NewClassifier(20, DefaultThresholds())
	snap := c.Classify(time.Unix(0, 0), 100.0, 0)
	assert.Equal(t, "uncertain", snap.Label)
}

func TestClassifyTrendUp(t *testing.T) {
	c := NewClassifier(10, DefaultThresholds())
	price := 100.0
	var last = c.Classify(time.Unix(0, 0), price, 0)
	for i := 1; i <= 15; i++ {
		price += 0.3
		last = c.Classify(time.Unix(int64(i), 0), price, 0)
	}
	assert.Equal(t, "trend_up", last.Label)
}

func TestClassifyHighVolatilityTakesPriorityOverTrend(t *testing.T) {
	c := NewClassifier(10, DefaultThresholds())
	price := 100.0
	var last = c.Classify(time.Unix(0, 0), price, 0)
	swing := 1.0
	for i := 1; i <= 15; i++ {
		if i%2 == 0 {
			price *= 1.0 + 0.1*swing
		} else {
			price *= 1.0 - 0.1*swing
		}
		last = c.Classify(time.Unix(int64(i), 0), price, 0)
	}
	assert.Equal(t, "high_volatility", last.Label)
}

func TestClassifyUncertaintyAboveThresholdTakesPriorityOverEverything(t *testing.T) {
	c := NewClassifier(5, DefaultThresholds())
	price := 100.0
	for i := 0; i <= 10; i++ {
		price += 0.3 // would otherwise classify as trend_up
		snap := c.Classify(time.Unix(int64(i), 0), price, 0.2)
		assert.Equal(t, "uncertain", snap.Label)
	}
}

func TestClassifyIsDeterministicForSameInput(t *testing.T) {
	run := func() string {
		c := NewClassifier(10, DefaultThresholds())
		price := 50.0
		var last = c.Classify(time.Unix(0, 0), price, 0)
		for i := 1; i <= 12; i++ {
			price += 0.25
			last = c.Classify(time.Unix(int64(i), 0), price, 0)
		}
		return last.Label
	}
	assert.Equal(t, run(), run())
}
