package apperr

import (
	"errors"
	"fmt"
)

// 业务错误分类。handler层根据类别决定HTTP状态码，
// service/repository层只关心语义。
var (
	// 输入不合法（格式错误、缺少必须的过期方式、时长越界等），不应重试
	ErrValidation = errors.New("validation error")
	// 引用的记录不存在
	ErrNotFound = errors.New("not found")
	// 同一文件对同一用户的重复分享
	ErrDuplicateShare = errors.New("share already exists")
	// 存储暂时不可用，读和幂等写可以重试
	ErrTransientStore = errors.New("transient store error")
	// 分享拒绝：不存在/已撤销/已过期/次数用尽，对外统一表现，不区分原因
	ErrShareDenied = errors.New("share link is invalid or expired")
)

// Validation 构造一个带说明的输入校验错误
func Validation(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Transient 将底层存储错误包装为可重试错误
func Transient(err error) error {
	return fmt.Errorf("%w: %v", ErrTransientStore, err)
}

// IsValidation 判断是否为输入校验错误
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}
