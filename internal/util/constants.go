package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
)

// 回答内容去除首尾空白后的最小字符数（按 rune 计）
const MinAnswerLength = 20

// 声望变动值
const (
	RepQuestionUpvote   = 5
	RepQuestionDownvote = -2
	RepAnswerUpvote     = 10
	RepAnswerDownvote   = -2
	RepAnswerAccepted   = 15
)

// 头像上传相关常量
const (
	MimeImage       = "image/"
	MimeOctetStream = "application/octet-stream"
)

var AllowedAvatarExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".webp"}
