package autoclicker

import "time"

// sleepWithStop waits for duration or until stop closes. It reports false
// when stopped.
func sleepWithStop(stop <-chan struct{}, duration time.Duration) bool {
	if duration <= 0 {
		select {
		case <-stop:
			return false
		default:
			return true
		}
	}
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-stop:
		return false
	case <-timer.C:
		return true
	}
}

func stopped(stop <-chan struct{}) bool {
	select {
	case <-stop:
		return true
	default:
		return false
	}
}

// runClickLoop clicks m.button at the sampled rate until l is stopped or the
// injector fails. Each wait subtracts the time the click itself took, so the
// spacing between clicks is the sampled delay.
func (c *Controller) runClickLoop(m *clickMacro, l *loop) {
	defer close(l.doneCh)

	rng := newRand()
	c.logger.Debug("Click loop started", "macro", m.id, "run", l.id)
	defer c.logger.Debug("Click loop stopped", "macro", m.id, "run", l.id)

	for !stopped(l.stopCh) {
		start := c.now()
		delay, cps := SampleDelay(rng, m.currentRate())
		if err := c.injector.Click(m.button); err != nil {
			c.logger.Warn("Synthetic click failed", "macro", m.id, "run", l.id, "err", err)
			c.reportLoopExit(m.id, l)
			return
		}
		c.notifyRate(m.id, cps)

		if !c.wait(l.stopCh, delay-c.now().Sub(start)) {
			return
		}
	}
}

// runHoldSingleLoop repeats left clicks at the hold rate, capped to 5 CPS.
func (c *Controller) runHoldSingleLoop(m *holdMacro, l *loop) {
	defer close(l.doneCh)

	c.logger.Debug("Hold loop started", "mode", HoldSingle, "run", l.id)
	defer c.logger.Debug("Hold loop stopped", "mode", HoldSingle, "run", l.id)

	for !stopped(l.stopCh) {
		start := c.now()
		cps := ClampHoldCPS(m.cps())
		delay := time.Duration(float64(time.Second) / cps)
		if err := c.injector.Click(ButtonLeft); err != nil {
			c.logger.Warn("Synthetic click failed", "macro", MacroHold, "run", l.id, "err", err)
			c.reportLoopExit(MacroHold, l)
			return
		}
		c.notifyRate(MacroHold, cps)

		if !c.wait(l.stopCh, delay-c.now().Sub(start)) {
			return
		}
	}
}

// runHoldBreakLoop presses the left button once and keeps it down until l is
// stopped. Once the press succeeds the release runs exactly once on every exit.
func (c *Controller) runHoldBreakLoop(l *loop) {
	defer close(l.doneCh)

	c.logger.Debug("Hold loop started", "mode", HoldBreak, "run", l.id)
	if err := c.injector.Press(ButtonLeft); err != nil {
		c.logger.Warn("Synthetic press failed", "macro", MacroHold, "run", l.id, "err", err)
		c.logger.Debug("Hold loop stopped", "mode", HoldBreak, "run", l.id)
		c.reportLoopExit(MacroHold, l)
		return
	}
	defer func() {
		if err := c.injector.Release(ButtonLeft); err != nil {
			c.logger.Warn("Synthetic release failed", "macro", MacroHold, "run", l.id, "err", err)
		}
		c.logger.Debug("Hold loop stopped", "mode", HoldBreak, "run", l.id)
	}()
	c.notifyRate(MacroHold, 0)

	for c.wait(l.stopCh, holdPollInterval) {
	}
}

// reportLoopExit tells the controller a loop ended on its own. If the
// controller is already stopping the loop the message is dropped.
func (c *Controller) reportLoopExit(id MacroID, l *loop) {
	select {
	case c.inbox <- func() { c.handleLoopExit(id, l) }:
	case <-l.stopCh:
	case <-c.doneCh:
	}
}

func (c *Controller) notifyRate(id MacroID, cps float64) {
	observer := c.observer
	c.tasks.Post(func() { observer.RateSampled(id, cps) })
}
