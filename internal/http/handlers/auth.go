package handlers

import (
	"bytes"

	"github.com/valyala/fasthttp"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"chatwidget/internal/config"
	dbpkg "chatwidget/internal/db"
	ui "chatwidget/web"
)

func LoginForm(_ *config.Config) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		t := ui.Templates().Lookup("login.html")
		if t == nil {
			ctx.SetStatusCode(fasthttp.StatusInternalServerError)
			ctx.SetBodyString("login template not found")
			return
		}
		var buf bytes.Buffer
		if err := t.Execute(&buf, map[string]any{}); err != nil {
			ctx.SetStatusCode(fasthttp.StatusInternalServerError)
			ctx.SetBodyString("render error")
			return
		}
		ctx.SetContentType("text/html; charset=utf-8")
		ctx.SetBody(buf.Bytes())
	}
}

func LoginSubmit(db *gorm.DB) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		username := string(ctx.PostArgs().Peek("username"))
		password := string(ctx.PostArgs().Peek("password"))

		var user dbpkg.User
		if err := db.Where("username = ?", username).First(&user).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				renderLoginError(ctx, "Invalid username or password.")
				return
			}
			ctx.SetStatusCode(fasthttp.StatusInternalServerError)
			ctx.SetBodyString("database error")
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
			renderLoginError(ctx, "Invalid username or password.")
			return
		}

		var c fasthttp.Cookie
		c.SetKey("session_user")
		c.SetValue(username)
		c.SetPath("/")
		c.SetHTTPOnly(true)
		ctx.Response.Header.SetCookie(&c)

		ctx.Redirect("/", fasthttp.StatusSeeOther)
	}
}

func renderLoginError(ctx *fasthttp.RequestCtx, errMsg string) {
	t := ui.Templates().Lookup("login.html")
	if t != nil {
		var buf bytes.Buffer
		_ = t.Execute(&buf, map[string]any{"Error": errMsg})
		ctx.SetStatusCode(fasthttp.StatusUnauthorized)
		ctx.SetContentType("text/html; charset=utf-8")
		ctx.SetBody(buf.Bytes())
	} else {
		ctx.SetStatusCode(fasthttp.StatusUnauthorized)
		ctx.SetBodyString(errMsg)
	}
}

func Logout() fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		var c fasthttp.Cookie
		c.SetKey("session_user")
		c.SetValue("")
		c.SetPath("/")
		c.SetMaxAge(-1)
		ctx.Response.Header.SetCookie(&c)
		ctx.Redirect("/login", fasthttp.StatusSeeOther)
	}
}
