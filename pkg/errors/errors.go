package errors

import "errors"

// ErrWorkspaceConflict 工作区已被其他操作修改
var ErrWorkspaceConflict = errors.New("工作区已被其他操作修改，请刷新后重试")
