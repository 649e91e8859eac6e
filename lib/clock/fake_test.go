// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"testing"
	"time"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFakeStandsStill(t *testing.T) {
	c := Fake(epoch)
	if !c.Now().Equal(epoch) || !c.Now().Equal(epoch) {
		t.Error("expected time to stand still without a step")
	}
}

func TestFakeAdvance(t *testing.T) {
	c := Fake(epoch)
	c.Advance(3 * time.Second)
	if got := c.Now(); !got.Equal(epoch.Add(3 * time.Second)) {
		t.Errorf("expected %v, got %v", epoch.Add(3*time.Second), got)
	}
}

func TestFakeStep(t *testing.T) {
	c := Fake(epoch)
	c.SetStep(15 * time.Millisecond)

	start := c.Now()
	if elapsed := Since(c, start); elapsed != 15*time.Millisecond {
		t.Errorf("expected 15ms elapsed, got %v", elapsed)
	}
}

func TestRealMovesForward(t *testing.T) {
	c := Real()
	first := c.Now()
	if Since(c, first) < 0 {
		t.Error("real clock went backwards")
	}
}
