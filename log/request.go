package log

import "github.com/sirupsen/logrus"

// Request logs request/response operations on the API. Failed operations are
// logged at warn.
func Request(log logrus.FieldLogger, eventName string, request interface{}, response interface{}, err error) {
	log = log.WithField("request", request)

	if response != nil {
		log = log.WithField("response", response)
	}
	if err != nil {
		log.WithError(err).Warn(eventName)
		return
	}

	log.Info(eventName)
}
