// Package calinga resolves localized text for a (language, namespace) pair
// from three tiers: preshipped resources, a persisted cache and the remote
// translation service.
//
// Resources are overridden by cached data, which is overridden by fresh
// service data. Fetched translations are written back to the cache together
// with the ETag the service returned.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "github.com/ZaguanLabs/calinga"
//	    "github.com/ZaguanLabs/calinga/cache"
//	    "github.com/ZaguanLabs/calinga/service"
//	)
//
//	func main() {
//	    svc, err := service.NewHTTPService(service.Config{
//	        Organization: "acme",
//	        Team:         "core",
//	        Project:      "app",
//	    })
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    b := calinga.NewBackend(svc,
//	        calinga.WithCache(cache.NewInMemoryCache(3600)),
//	        calinga.WithResources(calinga.ResourceStore{
//	            "en": {"app": {"title": "Welcome"}},
//	        }),
//	    )
//
//	    translations, err := b.Read(context.Background(), "en", "app")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(translations["title"])
//	}
package calinga
