package cmd

import (
	"Bt1Arena/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "启动账号服务",
	Long:  `启动Bt1Arena账号系统的HTTP服务器，提供注册、登录、资料和设置接口`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
