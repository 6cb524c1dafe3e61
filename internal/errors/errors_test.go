package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
)

// ErrorsTestSuite 错误包测试套件
type ErrorsTestSuite struct {
	suite.Suite
}

// 测试创建新错误
func (suite *ErrorsTestSuite) TestNew() {
	err := New(ErrInvalidParam)
	suite.NotNil(err)
	suite.Equal(ErrInvalidParam, err.Code)
	suite.Equal("无效的参数", err.Message)
	suite.Empty(err.Details)

	err = New(ErrUnknownGame, "对局ID: 42")
	suite.Equal(ErrUnknownGame, err.Code)
	suite.Equal("对局不存在", err.Message)
	suite.Equal("对局ID: 42", err.Details)
}

// 测试格式化错误创建
func (suite *ErrorsTestSuite) TestNewf() {
	err := Newf(ErrIllegalMove, "位置%d不可用", 9)
	suite.Equal(ErrIllegalMove, err.Code)
	suite.Equal("位置9不可用", err.Details)
}

// 测试错误包装
func (suite *ErrorsTestSuite) TestWrap() {
	originalErr := errors.New("原始错误")
	wrappedErr := Wrap(originalErr, ErrDatabaseQuery)
	suite.NotNil(wrappedErr)
	suite.Equal(ErrDatabaseQuery, wrappedErr.Code)
	suite.Equal("原始错误", wrappedErr.Details)
	suite.Equal(originalErr, wrappedErr.Cause)

	nilErr := Wrap(nil, ErrUnknown)
	suite.Nil(nilErr)

	// 包装已有的AppError保留原始错误码
	appErr := New(ErrGameFinished)
	wrappedAppErr := Wrap(appErr, ErrDatabaseUpdate, "额外信息")
	suite.Equal(ErrGameFinished, wrappedAppErr.Code)
	suite.Contains(wrappedAppErr.Details, "额外信息")
}

// 测试错误码判断
func (suite *ErrorsTestSuite) TestIs() {
	err := New(ErrNotYourTurn)
	suite.True(Is(err, ErrNotYourTurn))
	suite.False(Is(err, ErrIllegalMove))
	suite.False(Is(nil, ErrNotYourTurn))
	suite.False(Is(errors.New("普通错误"), ErrNotYourTurn))
}

// 测试HTTP状态码映射
func (suite *ErrorsTestSuite) TestHTTPStatus() {
	suite.Equal(404, New(ErrUnknownGame).HTTPStatus())
	suite.Equal(404, New(ErrUnknownPlayer).HTTPStatus())
	suite.Equal(403, New(ErrNotAParticipant).HTTPStatus())
	suite.Equal(409, New(ErrGameClosed).HTTPStatus())
	suite.Equal(409, New(ErrNotYourTurn).HTTPStatus())
	suite.Equal(409, New(ErrIllegalMove).HTTPStatus())
	suite.Equal(409, New(ErrSelfPlay).HTTPStatus())
	suite.Equal(409, New(ErrGameNotStarted).HTTPStatus())
	suite.Equal(400, New(ErrInvalidParam).HTTPStatus())
	suite.Equal(401, New(ErrTokenExpired).HTTPStatus())
	suite.Equal(503, New(ErrDatabaseQuery).HTTPStatus())
	suite.Equal(500, New(ErrLedgerDivergence).HTTPStatus())
}

// 测试校验类错误判定
func (suite *ErrorsTestSuite) TestIsValidation() {
	suite.True(IsValidation(New(ErrNotYourTurn)))
	suite.True(IsValidation(New(ErrIllegalMove)))
	suite.True(IsValidation(New(ErrSelfPlay)))
	suite.True(IsValidation(New(ErrMessageFormat)))
	suite.False(IsValidation(New(ErrDatabaseUpdate)))
	suite.False(IsValidation(New(ErrLedgerWrite)))
}

// 测试可重试判定
func (suite *ErrorsTestSuite) TestIsRetryable() {
	suite.True(IsRetryable(New(ErrTimeout)))
	suite.True(IsRetryable(New(ErrLedgerWrite)))
	suite.True(IsRetryable(New(ErrDatabaseConnect)))
	suite.False(IsRetryable(New(ErrIllegalMove)))
	suite.False(IsRetryable(nil))
}

// 测试Unwrap支持标准库errors.Is
func (suite *ErrorsTestSuite) TestUnwrap() {
	originalErr := errors.New("底层错误")
	wrappedErr := Wrap(originalErr, ErrLedgerWrite)
	suite.True(errors.Is(wrappedErr, originalErr))
}

func TestErrorsTestSuite(t *testing.T) {
	suite.Run(t, new(ErrorsTestSuite))
}
