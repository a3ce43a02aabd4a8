package app

import (
	accounthandler "github.com/dgbank/dgbank/internal/handler/account"
	cardhandler "github.com/dgbank/dgbank/internal/handler/card"
	"github.com/dgbank/dgbank/internal/handler/middleware"
	transactionhandler "github.com/dgbank/dgbank/internal/handler/transaction"
	userhandler "github.com/dgbank/dgbank/internal/handler/user"
	"github.com/dgbank/dgbank/internal/postgres"
	"github.com/dgbank/dgbank/internal/service"
	"github.com/go-chi/chi/v5"
)

func (app *App) Router() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.WithAuth(app.Config))

	p := postgres.New(app.DB)
	ids := service.NewIdentifierGenerator(p)

	userService := service.NewUserService(p, app.Config)
	accountService := service.NewAccountService(p, p, ids)
	transactionService := service.NewTransactionService(p, accountService, p)
	cardService := service.NewCardService(p, p, p, ids)
	guard := service.NewAuthGuard(p, p, p, p)

	userHandler := userhandler.New(userService)
	accountHandler := accounthandler.New(accountService, guard)
	transactionHandler := transactionhandler.New(transactionService, guard)
	cardHandler := cardhandler.New(cardService, guard)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", userHandler.Register)
			r.Post("/login", userHandler.Login)
		})

		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", accountHandler.Create)
			r.Get("/{accountID}", accountHandler.Get)
			r.Get("/{accountID}/balance", accountHandler.Balance)
			r.Put("/{accountID}/freeze", accountHandler.Freeze)
			r.Put("/{accountID}/unfreeze", accountHandler.Unfreeze)
			r.Get("/user/{userID}", accountHandler.ByUser)
			r.Get("/user/{userID}/total-balance", accountHandler.TotalBalance)
		})

		r.Route("/cards", func(r chi.Router) {
			r.Post("/issue", cardHandler.Issue)
			r.Get("/by-number", cardHandler.ByNumber)
			r.Get("/{cardID}", cardHandler.Get)
			r.Put("/{cardID}/block", cardHandler.Block)
			r.Put("/{cardID}/activate", cardHandler.Activate)
			r.Get("/user/{userID}", cardHandler.ByUser)
			r.Get("/account/{accountID}", cardHandler.ByAccount)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Post("/deposit", transactionHandler.Deposit)
			r.Post("/withdraw", transactionHandler.Withdraw)
			r.Post("/transfer", transactionHandler.Transfer)
			r.Get("/{transactionID}", transactionHandler.Get)
			r.Put("/{transactionID}/cancel", transactionHandler.Cancel)
			r.Get("/account/{accountID}", transactionHandler.ByAccount)
			r.Get("/account/{accountID}/paginated", transactionHandler.ByAccountPaginated)
			r.Get("/account/{accountID}/recent", transactionHandler.RecentByAccount)
			r.Get("/user/{userID}/paginated", transactionHandler.ByUserPaginated)
			r.Get("/user/{userID}/recent", transactionHandler.RecentByUser)
			r.Get("/user/{userID}/incomes-since", transactionHandler.IncomesSince)
			r.Get("/user/{userID}/expenses-since", transactionHandler.ExpensesSince)
		})
	})

	return r
}
