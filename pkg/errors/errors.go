package errors

import "errors"

// ErrArtifactNotFound 存储后端中不存在指定路径的证书文件
var ErrArtifactNotFound = errors.New("证书文件不存在")
