package core

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 支持错误检查函数（IsXXX）
//
// 传播策略（引擎的总原则）：
//   - INSUFFICIENT_DATA / TIMEOUT 在引擎内部捕获并触发热门兜底，绝不作为失败暴露给调用方
//   - INVALID_FILTER / INVALID_INPUT 是调用方误用，原样上抛
//   - 空语料、无相似用户等属于合法的空结果，不产生错误
type DomainError struct {
	Code    string // 错误代码（如 "NOT_FOUND", "INVALID_FILTER"）
	Message string // 错误消息
	Module  string // 模块名称（如 "store", "engine", "filter"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// GetDomainError 获取 DomainError，如果不是则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	if domainErr, ok := err.(*DomainError); ok {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// 错误代码常量
const (
	ErrorCodeNotFound         = "NOT_FOUND"          // 资源不存在
	ErrorCodeNotSupported     = "NOT_SUPPORTED"      // 操作不支持
	ErrorCodeUnavailable      = "UNAVAILABLE"        // 服务不可用
	ErrorCodeInvalidInput     = "INVALID_INPUT"      // 输入无效（硬错误）
	ErrorCodeInvalidFilter    = "INVALID_FILTER"     // 过滤条件取值未知（硬错误）
	ErrorCodeInsufficientData = "INSUFFICIENT_DATA"  // 数据不足（内部捕获，触发兜底）
	ErrorCodeTimeout          = "TIMEOUT"            // 引擎超时（内部捕获，触发兜底）
	ErrorCodeInternalError    = "INTERNAL_ERROR"     // 内部错误
)

// 模块名称常量
const (
	ModuleStore    = "store"
	ModuleEngine   = "engine"
	ModuleFilter   = "filter"
	ModuleProfiler = "profiler"
	ModuleGate     = "gate"
)

func hasCode(err error, code string) bool {
	if err == nil {
		return false
	}
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == code
	}
	return false
}

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool { return hasCode(err, ErrorCodeNotFound) }

// IsNotSupported 检查错误是否为 NOT_SUPPORTED
func IsNotSupported(err error) bool { return hasCode(err, ErrorCodeNotSupported) }

// IsInvalidInput 检查错误是否为调用方输入错误
func IsInvalidInput(err error) bool { return hasCode(err, ErrorCodeInvalidInput) }

// IsInvalidFilter 检查错误是否为未知的过滤条件取值
func IsInvalidFilter(err error) bool { return hasCode(err, ErrorCodeInvalidFilter) }

// IsInsufficientData 检查错误是否为数据不足（应触发兜底而非上抛）
func IsInsufficientData(err error) bool { return hasCode(err, ErrorCodeInsufficientData) }

// IsTimeout 检查错误是否为引擎超时（应触发兜底而非上抛）
func IsTimeout(err error) bool { return hasCode(err, ErrorCodeTimeout) }
