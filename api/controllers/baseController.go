package controllers

type BaseController struct {
}
