package routes

import (
	"tiempos/controllers/account"
	"tiempos/controllers/auditlog"
	"tiempos/controllers/bet"
	"tiempos/controllers/draw"
	"tiempos/controllers/operator"
	"tiempos/controllers/risk"
	"tiempos/middlewares"

	"github.com/gofiber/fiber/v2"
)

func Setup(app *fiber.App) {
	accountroutes := app.Group("/accounts", middlewares.OperatorAuth)
	accountroutes.Post("/", account.Register)
	accountroutes.Get("/:code", account.Balance)
	accountroutes.Post("/:code/deposit", account.Deposit)
	accountroutes.Get("/:code/ledger", account.Ledger)

	betroutes := app.Group("/bets", middlewares.OperatorAuth)
	betroutes.Post("/", bet.Place)
	betroutes.Get("/:ticket", bet.Status)

	riskroutes := app.Group("/risk", middlewares.OperatorAuth)
	riskroutes.Get("/evaluate", risk.Evaluate)

	drawroutes := app.Group("/draws", middlewares.OperatorAuth)
	drawroutes.Get("/result", draw.Result)

	//admin
	admin := app.Group("/admin", middlewares.AdminAuth())
	admin.Post("/operators", operator.Register)
	admin.Post("/draws/settle", draw.Publish)
	admin.Post("/bets/:ticket/refund", bet.Refund)
	admin.Put("/risk-limits", risk.UpsertLimit)
	admin.Get("/risk-limits", risk.ListLimits)
	admin.Get("/audit/verify", auditlog.Verify)
	admin.Get("/audit/events", auditlog.Events)
}
