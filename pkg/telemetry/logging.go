// Package telemetry provides hsmctx.Observer implementations: a
// structured logger generalized from the teacher's pkg/observers.
// LoggingObserver (its ad hoc LogLevel/fmt.Printf pair replaced with
// logrus fields and levels), and a metrics accumulator generalized from
// pkg/observers.MetricsObserver.
package telemetry

import (
	"github.com/sirupsen/logrus"

	"corehsm.dev/hsm/internal/hsmctx"
)

// LoggingObserver logs every state entry/exit, transition and exception
// as a structured logrus entry tagged with the owning machine's name.
type LoggingObserver struct {
	log     *logrus.Entry
	onEnter logrus.Level
	onExit  logrus.Level
}

// NewLoggingObserver builds a LoggingObserver scoped to machineName,
// logging onto logger (or logrus.StandardLogger() if nil) at Info level
// for state entry/exit and transitions.
func NewLoggingObserver(logger *logrus.Logger, machineName string) *LoggingObserver {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LoggingObserver{
		log:     logger.WithField("machine", machineName),
		onEnter: logrus.InfoLevel,
		onExit:  logrus.InfoLevel,
	}
}

var _ hsmctx.Observer = (*LoggingObserver)(nil)

func (o *LoggingObserver) OnStateEnter(stateName string) {
	o.log.WithField("state", stateName).Log(o.onEnter, "state entered")
}

func (o *LoggingObserver) OnStateExit(stateName string) {
	o.log.WithField("state", stateName).Log(o.onExit, "state exited")
}

func (o *LoggingObserver) OnTransition(transitionName, eventName string) {
	o.log.WithFields(logrus.Fields{
		"transition": transitionName,
		"event":      eventName,
	}).Info("transition fired")
}

func (o *LoggingObserver) OnException(err error) {
	o.log.WithError(err).Error("hook failed")
}
