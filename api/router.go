package api

import (
	"github.com/gin-gonic/gin"
	"github.com/shareat/lucky-draw-backend/internal/code"
	"github.com/shareat/lucky-draw-backend/internal/draw"
	"github.com/shareat/lucky-draw-backend/internal/entry"
	"github.com/shareat/lucky-draw-backend/internal/prize"
	"github.com/shareat/lucky-draw-backend/internal/user"
)

// SetupRoutes 注册项目的所有API路由
func SetupRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		// 公开路由：营销页展示用，无需登录
		api.GET("/prizes", prize.ListPrizes)
		api.GET("/winners", draw.ListPublicWinners)

		// 参与者路由：需要有效的身份令牌
		authed := api.Group("", user.RequireAuth())
		{
			authed.POST("/redeem", entry.RedeemCode)
			authed.GET("/me", user.GetMe)
			authed.PUT("/me", user.UpdateMe)
			authed.GET("/me/entry", entry.GetMyEntry)
		}

		// 管理路由：每个请求都重新校验admin角色
		admin := api.Group("/admin", user.RequireAuth(), user.RequireAdmin())
		{
			// 兑换码管理
			admin.POST("/codes", code.CreateCode)
			admin.POST("/codes/batch", code.GenerateCodes)
			admin.GET("/codes", code.ListCodes)
			admin.PATCH("/codes/:id/active", code.SetCodeActive)

			// 奖品管理
			admin.GET("/prizes", prize.ListAllPrizes)
			admin.POST("/prizes", prize.CreatePrize)
			admin.PUT("/prizes/:id", prize.UpdatePrize)
			admin.DELETE("/prizes/:id", prize.DeletePrize)

			// 参与记录
			admin.GET("/entries", entry.ListEntries)

			// 中奖记录管理
			admin.GET("/winners", draw.ListAllWinners)
			admin.POST("/winners", draw.CreateWinner)
			admin.PATCH("/winners/:id/public", draw.SetWinnerPublic)
			admin.DELETE("/winners/:id", draw.DeleteWinner)

			// 抽签操作：抽取、确认、月度重置。全部是手动触发，没有定时任务
			admin.POST("/draw/pick", draw.PickWinnersHandler)
			admin.POST("/draw/confirm", draw.ConfirmWinnersHandler)
			admin.POST("/draw/reset", draw.ResetMonthHandler)

			// 用户与角色管理
			admin.GET("/users", user.ListUsers)
			admin.PUT("/users/:id/role", user.SetUserRole)
		}
	}
}
