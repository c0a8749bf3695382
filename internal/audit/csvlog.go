package audit

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"
)

var header = []string{"timestamp", "action", "amount", "price", "notes"}

// Record 为一条交易审计记录。
type Record struct {
	Timestamp time.Time
	Action    string
	Amount    float64
	Price     float64
	Notes     string
}

// Logger 以追加模式维护 CSV 交易审计日志。每笔已执行或模拟成交的
// 订单写入恰好一条记录，被跳过的周期不产生记录。
type Logger struct {
	path   string
	logger *zap.Logger
}

// NewLogger 创建审计日志，文件不存在时写入表头。
func NewLogger(path string, logger *zap.Logger) (*Logger, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("audit: 创建目录 %q 失败: %w", dir, err)
		}
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		file, createErr := os.Create(path)
		if createErr != nil {
			return nil, fmt.Errorf("audit: 初始化审计日志失败: %w", createErr)
		}
		writer := csv.NewWriter(file)
		_ = writer.Write(header)
		writer.Flush()
		if closeErr := file.Close(); closeErr != nil {
			return nil, fmt.Errorf("audit: 关闭审计日志失败: %w", closeErr)
		}
		if err := writer.Error(); err != nil {
			return nil, fmt.Errorf("audit: 写入表头失败: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("audit: 检查审计日志失败: %w", err)
	}

	return &Logger{path: path, logger: logger}, nil
}

// Append 追加一条交易记录。
func (l *Logger) Append(record Record) error {
	file, err := os.OpenFile(l.path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("audit: 打开审计日志失败: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}

	writer := csv.NewWriter(file)
	writeErr := writer.Write([]string{
		record.Timestamp.UTC().Format(time.RFC3339),
		record.Action,
		strconv.FormatFloat(record.Amount, 'f', -1, 64),
		strconv.FormatFloat(record.Price, 'f', -1, 64),
		record.Notes,
	})
	writer.Flush()

	if writeErr == nil {
		writeErr = writer.Error()
	}
	if writeErr != nil {
		return fmt.Errorf("audit: 写入交易记录失败: %w", writeErr)
	}

	l.logger.Info("交易已记入审计日志",
		zap.String("action", record.Action),
		zap.Float64("amount", record.Amount),
		zap.Float64("price", record.Price),
	)

	return nil
}
