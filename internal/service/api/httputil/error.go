package httputil

import (
	"net/http"

	apperrors "github.com/darkkaiser/affiliate-store-server/internal/pkg/errors"
	applog "github.com/darkkaiser/affiliate-store-server/pkg/log"
	"github.com/labstack/echo/v4"
)

// component 로깅용 컴포넌트 이름
const component = "api.errorhandler"

const (
	errMsgInternalServer = "서버 내부 오류가 발생하였습니다"
	errMsgNotFound       = "요청하신 리소스를 찾을 수 없습니다"
)

// FromAppError 애플리케이션 에러를 해당하는 HTTP 에러로 변환합니다.
//
// 에러 유형별 상태 코드:
//   - InvalidInput  -> 400
//   - Unauthorized  -> 401
//   - NotFound      -> 404
//   - ParsingFailed -> 422 (수집한 데이터를 해석할 수 없음)
//   - Unavailable   -> 503 (외부 소스에 접근할 수 없음)
//   - Timeout       -> 504
//   - 그 외          -> 500 (내부 상세는 노출하지 않음)
func FromAppError(err error) error {
	message := errMsgInternalServer
	if appErr, ok := err.(interface{ Message() string }); ok {
		message = appErr.Message()
	}

	switch apperrors.UnderlyingType(err) {
	case apperrors.InvalidInput:
		return NewBadRequestError(message)
	case apperrors.Unauthorized:
		return NewUnauthorizedError(message)
	case apperrors.NotFound:
		return NewNotFoundError(message)
	case apperrors.ParsingFailed:
		return NewUnprocessableEntityError(message)
	case apperrors.Unavailable:
		return NewServiceUnavailableError(message)
	case apperrors.Timeout:
		return newHTTPError(http.StatusGatewayTimeout, message)
	}

	return NewInternalServerError(errMsgInternalServer)
}

// ErrorHandler Echo 프레임워크의 전역 에러 핸들러입니다.
//
// 모든 HTTP 에러를 가로채서 표준 ErrorResponse JSON 형식으로 변환하여 반환합니다.
// 에러 발생 시 적절한 로그 레벨(Error/Warn)로 상세 정보를 기록합니다.
func ErrorHandler(err error, c echo.Context) {
	code := http.StatusInternalServerError
	message := errMsgInternalServer

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if msg, ok := he.Message.(string); ok {
			message = msg
		} else if resp, ok := he.Message.(ErrorResponse); ok {
			message = resp.Message
		}
	}

	// 존재하지 않는 경로에 대한 응답 메시지 통일
	if code == http.StatusNotFound && message == http.StatusText(http.StatusNotFound) {
		message = errMsgNotFound
	}

	fields := applog.Fields{
		"path":        c.Request().URL.Path,
		"method":      c.Request().Method,
		"status_code": code,
		"error":       err,
		"remote_ip":   c.RealIP(),
		"request_id":  c.Response().Header().Get(echo.HeaderXRequestID),
	}

	if code >= http.StatusInternalServerError {
		applog.WithComponentAndFields(component, fields).Error("HTTP 5xx 서버 에러가 발생하였습니다")
	} else if code >= http.StatusBadRequest {
		applog.WithComponentAndFields(component, fields).Warn("HTTP 4xx 클라이언트 에러가 발생하였습니다")
	}

	// 이중 응답 방지: 이미 응답이 전송된 경우 추가 응답 시도하지 않음
	if c.Response().Committed {
		return
	}

	// HEAD 요청은 HTTP 명세에 따라 헤더만 반환하고 본문은 생략합니다.
	if c.Request().Method == http.MethodHead {
		c.NoContent(code)
		return
	}

	c.JSON(code, ErrorResponse{
		ResultCode: code,
		Message:    message,
	})
}
