package model

type Response struct {
	Msg string `json:"msg"`
}
