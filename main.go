/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-09-04 17:40:12
 * @LastEditTime: 2025-11-07 22:20:51
 * @LastEditors: 安知鱼
 */
package main

import (
	"log"

	"github.com/anzhiyu-c/anwen-blog/cmd/server"
)

func main() {
	app, cleanup, err := server.NewApp()
	if err != nil {
		log.Fatalf("应用初始化失败: %v", err)
	}
	defer cleanup()

	if err := app.Run(); err != nil {
		log.Fatalf("应用运行失败: %v", err)
	}
}
