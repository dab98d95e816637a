package cmd

import (
	"log"

	"Bt1Arena/config"
	"Bt1Arena/db"
	"Bt1Arena/model"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "初始化数据库结构",
	Long:  `创建users和user_settings表，并用GORM校验设置模型的结构。`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()

		if err := db.ConnectDB(cfg); err != nil {
			log.Fatalf("无法连接到数据库: %v", err)
		}
		defer db.DB.Close()

		if err := db.InitDB(); err != nil {
			log.Fatalf("初始化数据库失败: %v", err)
		}

		if err := db.ConnectGormDB(cfg); err != nil {
			log.Fatalf("无法建立GORM连接: %v", err)
		}
		defer db.CloseGormDB()

		if err := db.AutoMigrateModels(&model.UserSettings{}); err != nil {
			log.Fatalf("迁移设置模型失败: %v", err)
		}

		log.Println("数据库迁移完成。")
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
