package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"elearn/backend/pkg/response"
)

// paramValidator 校验路径参数
var paramValidator = validator.New()

func init() {
	// 校验错误里使用表单字段名而不是 Go 字段名
	paramValidator.RegisterTagNameFunc(fieldName)
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(fieldName)
	}
}

func fieldName(fld reflect.StructField) string {
	for _, tag := range []string{"form", "json"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

// uuidParam 读取并校验 UUID 格式的路径参数；失败时已写入 400
func uuidParam(c *gin.Context, name, label string) (string, bool) {
	id := c.Param(name)
	if err := paramValidator.Var(id, "required,uuid"); err != nil {
		response.BadRequest(c, 10001, label+"格式无效")
		return "", false
	}
	return id, true
}

// bindError 参数绑定失败的统一响应，带上校验失败的字段
func bindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Field()+":"+fe.Tag())
		}
		response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", strings.Join(fields, ", "))
		return
	}
	response.BadRequest(c, 10001, "参数校验失败")
}
