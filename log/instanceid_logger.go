package log

import (
	"github.com/sirupsen/logrus"

	"github.com/sessiongate/sessiongate/instanceid"
)

type instanceIDFormatter struct {
	formatter logrus.Formatter
}

func (l instanceIDFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	newentry := *entry
	newentry.Data = make(logrus.Fields, len(entry.Data)+1)

	for k, v := range entry.Data {
		newentry.Data[k] = v
	}

	newentry.Data["instanceId"] = instanceid.String()

	return l.formatter.Format(&newentry)
}
