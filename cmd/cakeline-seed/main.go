// README: Demo seeder; populates drivers, catalogs, and sample orders.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"cakeline/internal/config"
	"cakeline/internal/infra"
	"cakeline/internal/modules/order"
)

func main() {
	var withOrders bool
	flag.BoolVar(&withOrders, "orders", true, "seed demo orders in addition to settings")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	drivers := [][3]string{
		{"driver-1", "Driver 1", "Van AB-1234"},
		{"driver-2", "Driver 2", "Van CD-5678"},
		{"helper-1", "Helper 1", "Scooter EF-90"},
	}
	for _, d := range drivers {
		_, err := db.Exec(ctx, `
			INSERT INTO drivers (driver_type, display_name, vehicle_info, active)
			VALUES ($1, $2, $3, TRUE)
			ON CONFLICT (driver_type) DO UPDATE
			SET display_name = EXCLUDED.display_name, vehicle_info = EXCLUDED.vehicle_info`,
			d[0], d[1], d[2])
		if err != nil {
			log.Fatalf("seed driver %s: %v", d[0], err)
		}
	}

	catalogs := map[string][]string{
		"shapes":  {"round", "square", "heart", "tiered"},
		"flavors": {"vanilla", "chocolate", "red-velvet", "lemon"},
		"sizes":   {"6-inch", "8-inch", "10-inch", "two-tier"},
	}
	for kind, values := range catalogs {
		for i, v := range values {
			_, err := db.Exec(ctx, `
				INSERT INTO catalog_options (kind, value, sort_order)
				VALUES ($1, $2, $3)
				ON CONFLICT (kind, value) DO NOTHING`, kind, v, i)
			if err != nil {
				log.Fatalf("seed catalog %s: %v", kind, err)
			}
		}
	}
	fmt.Println("settings seeded")

	if !withOrders {
		return
	}

	svc := order.NewService(order.NewStore(db), nil, nil)
	slot1, slot2 := order.Slot1, order.Slot2
	demo := []order.CreateCommand{
		{CustomerName: "Alice Tan", CakeDescription: "two-tier vanilla, gold trim", DeliveryDate: time.Now(), DeliverySlot: &slot1},
		{CustomerName: "Ben Ortiz", CakeDescription: "chocolate drip, 8-inch", DeliveryDate: time.Now().AddDate(0, 0, 1), DeliverySlot: &slot2},
		{CustomerName: "Chloe Lim", CakeDescription: "heart red-velvet", DeliveryDate: time.Now().AddDate(0, 0, 2)},
	}
	for _, cmd := range demo {
		cmd.Actor = "Seeder"
		id, err := svc.Create(ctx, cmd)
		if err != nil {
			log.Fatalf("seed order for %s: %v", cmd.CustomerName, err)
		}
		fmt.Printf("order %s (%s)\n", id, cmd.CustomerName)
	}
}
