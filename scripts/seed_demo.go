// 本地联调用的演示数据脚本
//
// 建一条已发布的学习路径（两个模块、三个课时），其中一个课时由
// 课时级测验把关。重复执行不会重复建路径。
//
// 用法: go run scripts/seed_demo.go
package main

import (
	"log"

	"elearn_backend/internal/config"
	"elearn_backend/internal/model"
	"elearn_backend/pkg/database"
	"elearn_backend/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	logger.InitLogger(cfg)

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	var count int64
	db.Model(&model.LearningPath{}).Where("title = ?", "Go 入门路径").Count(&count)
	if count > 0 {
		log.Println("演示数据已存在，跳过")
		return
	}

	path := &model.LearningPath{
		Title:       "Go 入门路径",
		Description: "从零开始的 Go 语言学习路径",
		Published:   true,
		Modules: []model.Module{
			{
				Title: "基础语法",
				Order: 1,
				Lessons: []model.Lesson{
					{Title: "变量与类型", Order: 1},
					{Title: "流程控制", Order: 2},
				},
			},
			{
				Title: "并发编程",
				Order: 2,
				Lessons: []model.Lesson{
					{Title: "goroutine 与 channel", Order: 1},
				},
			},
		},
	}
	if err := db.Create(path).Error; err != nil {
		log.Fatalf("创建学习路径失败: %v", err)
	}

	gated := &path.Modules[1].Lessons[0]
	quiz := &model.Quiz{
		Title:        "并发基础测验",
		Scope:        model.ScopeLesson,
		ScopeID:      gated.ID,
		PassingScore: 60,
		Retakeable:   true,
		Questions: []model.Question{
			{
				Text:   "channel 是否可以在多个 goroutine 之间安全传递数据？",
				Type:   model.TrueFalse,
				Points: 5,
				Order:  1,
				Options: []model.QuestionOption{
					{Text: "是", IsCorrect: true, Order: 1},
					{Text: "否", Order: 2},
				},
			},
			{
				Text:   "哪种方式用于等待一组 goroutine 结束？",
				Type:   model.MultipleChoice,
				Points: 5,
				Order:  2,
				Options: []model.QuestionOption{
					{Text: "sync.WaitGroup", IsCorrect: true, Order: 1},
					{Text: "time.Sleep", Order: 2},
					{Text: "runtime.GC", Order: 3},
				},
			},
		},
	}
	if err := db.Create(quiz).Error; err != nil {
		log.Fatalf("创建测验失败: %v", err)
	}

	if err := db.Model(gated).Update("quiz_id", quiz.ID).Error; err != nil {
		log.Fatalf("绑定把关测验失败: %v", err)
	}

	log.Println("演示数据创建完成")
}
