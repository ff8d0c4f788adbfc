package dto

type LoginRequestDTO struct {
	InitData string `json:"init_data" example:"query_id=AAHdF6IQAAAAAN0XohDhrOrc&user=%7B%22id%22%3A1001%7D&auth_date=1717243200&hash=c501b71e"`
}

type LoginResponseDTO struct {
	Token  string `json:"token"`
	UserID int64  `json:"user_id" example:"1"`
	Admin  bool   `json:"admin" example:"false"`
}
