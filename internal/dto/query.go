package dto

// MonthQuery 月份查询参数
type MonthQuery struct {
	Month string `form:"month" binding:"omitempty,len=7"`
}

// DateQuery 日期查询参数
type DateQuery struct {
	Date string `form:"date" binding:"omitempty,len=10"`
}

// RangeQuery 日期区间查询参数
type RangeQuery struct {
	From string `form:"from" binding:"required,len=10"`
	To   string `form:"to"   binding:"required,len=10"`
}
