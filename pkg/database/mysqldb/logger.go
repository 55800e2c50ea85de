package mysqldb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
	gormUtils "gorm.io/gorm/utils"

	"github.com/ninja0404/sol-sniper/pkg/logger"
)

var _ gormLogger.Interface = (*MysqlLogger)(nil)

const (
	traceStr     = "%s [%.3fms] [rows:%v] %s"
	traceWarnStr = "%s %s [%.3fms] [rows:%v] %s"
	traceErrStr  = "%s %s [%.3fms] [rows:%v] %s"
)

// MysqlLogger 把gorm日志桥接到zap
type MysqlLogger struct {
	logger       *logger.Logger
	loggerLevel  gormLogger.LogLevel
	loggerConfig gormLogger.Config
}

func NewMysqlLogger(log *logger.Logger, loggerLevel gormLogger.LogLevel) *MysqlLogger {
	l := MysqlLogger{
		logger:      log,
		loggerLevel: loggerLevel,
	}
	l.loggerConfig = gormLogger.Config{
		SlowThreshold:             1000 * time.Millisecond,
		LogLevel:                  loggerLevel,
		IgnoreRecordNotFoundError: true,
		ParameterizedQueries:      loggerLevel < gormLogger.Info,
		Colorful:                  false,
	}
	return &l
}

func (l *MysqlLogger) LogMode(level gormLogger.LogLevel) gormLogger.Interface {
	newLogger := *l
	newLogger.loggerLevel = level
	newLogger.loggerConfig.LogLevel = level
	return &newLogger
}

func (l *MysqlLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.loggerLevel >= gormLogger.Info {
		l.logger.Info(fmt.Sprintf(msg, data...))
	}
}

func (l *MysqlLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.loggerLevel >= gormLogger.Warn {
		l.logger.Warn(fmt.Sprintf(msg, data...))
	}
}

func (l *MysqlLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.loggerLevel >= gormLogger.Error {
		l.logger.Error(fmt.Sprintf(msg, data...))
	}
}

func (l *MysqlLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.loggerLevel <= gormLogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && l.loggerLevel >= gormLogger.Error &&
		(!errors.Is(err, gorm.ErrRecordNotFound) || !l.loggerConfig.IgnoreRecordNotFoundError):
		sql, rows := fc()
		l.logger.Error(fmt.Sprintf(traceErrStr, gormUtils.FileWithLineNum(), err,
			float64(elapsed.Nanoseconds())/1e6, rows, sql))
	case elapsed > l.loggerConfig.SlowThreshold && l.loggerConfig.SlowThreshold != 0 && l.loggerLevel >= gormLogger.Warn:
		sql, rows := fc()
		slowLog := fmt.Sprintf("SLOW SQL >= %v", l.loggerConfig.SlowThreshold)
		l.logger.Warn(fmt.Sprintf(traceWarnStr, gormUtils.FileWithLineNum(), slowLog,
			float64(elapsed.Nanoseconds())/1e6, rows, sql))
	case l.loggerLevel == gormLogger.Info:
		sql, rows := fc()
		l.logger.Debug(fmt.Sprintf(traceStr, gormUtils.FileWithLineNum(),
			float64(elapsed.Nanoseconds())/1e6, rows, sql))
	}
}
