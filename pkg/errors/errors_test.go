package errors

import (
	"fmt"
	"net/http"
	"os"
	"testing"
)

func TestCodeToHTTPStatus(t *testing.T) {
	tests := []struct {
		code     Code
		expected int
	}{
		{CodeFormat, http.StatusBadRequest},
		{CodeInvalidInput, http.StatusBadRequest},
		{CodeSourceNotFound, http.StatusNotFound},
		{CodeAlreadyExists, http.StatusConflict},
		{CodeRosterNotFresh, http.StatusConflict},
		{CodeTooLarge, http.StatusRequestEntityTooLarge},
		{CodeTimeout, http.StatusGatewayTimeout},
		{CodeDatabaseError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if status := New(tt.code, "x").HTTPStatus; status != tt.expected {
				t.Errorf("HTTPStatus = %d, expected %d", status, tt.expected)
			}
		})
	}
}

func TestIs_ThroughWrapping(t *testing.T) {
	err := fmt.Errorf("导入失败: %w", Format("Alice", "Tuesday", "需要3个班次"))

	if !Is(err, CodeFormat) {
		t.Error("Is() should see through fmt wrapping")
	}
	if GetCode(err) != CodeFormat {
		t.Errorf("GetCode() = %s", GetCode(err))
	}
	if Is(fmt.Errorf("plain"), CodeFormat) {
		t.Error("plain error should not match")
	}
}

func TestSourceNotFound_Unwrap(t *testing.T) {
	_, cause := os.Open("/definitely/not/here.txt")
	err := SourceNotFound("/definitely/not/here.txt", cause)

	if !os.IsNotExist(err.Unwrap()) {
		t.Error("Unwrap() should return the os error")
	}
	if err.Fields["path"] != "/definitely/not/here.txt" {
		t.Errorf("path field = %v", err.Fields["path"])
	}
}

func TestFormat_Fields(t *testing.T) {
	err := Format("Bob", "Monday", "未知班次")
	if err.Fields["employee"] != "Bob" || err.Fields["day"] != "Monday" {
		t.Errorf("Fields = %v", err.Fields)
	}
}

func TestAs_WrapsForeignErrors(t *testing.T) {
	appErr := As(fmt.Errorf("boom"))
	if appErr.Code != CodeInternal {
		t.Errorf("Code = %s, expected %s", appErr.Code, CodeInternal)
	}

	orig := New(CodeFormat, "bad")
	if As(orig) != orig {
		t.Error("As() should return the same AppError")
	}
}

func TestValidationErrors(t *testing.T) {
	ve := &ValidationErrors{}
	if ve.HasErrors() {
		t.Error("empty ValidationErrors should have no errors")
	}

	ve.Add("employees", "员工列表不能为空")
	appErr := ve.ToAppError()
	if appErr.Code != CodeValidationFail {
		t.Errorf("Code = %s", appErr.Code)
	}
	if appErr.Fields["employees"] != "员工列表不能为空" {
		t.Errorf("Fields = %v", appErr.Fields)
	}
}
